package schemaregistry

// SubjectNamingStrategy derives the registry subject a schema is looked up
// or registered under. The concrete strategies mirror the conventions used
// by the Confluent serializers, so subjects produced here line up with what
// other clients write to the same registry.
type SubjectNamingStrategy interface {
	// SubjectName returns the subject for this strategy.
	SubjectName() string
}

// SubjectNameStrategy uses an explicit subject and appends the "-key" or
// "-value" suffix depending on which half of the message the schema covers.
type SubjectNameStrategy struct {
	Subject string
	IsKey   bool
}

func (s SubjectNameStrategy) SubjectName() string {
	return s.Subject + keySuffix(s.IsKey)
}

// TopicNameStrategy derives the subject from the topic name, producing the
// "<topic>-key" and "<topic>-value" subjects most registries are organized
// around. This is the default convention of the Confluent clients.
type TopicNameStrategy struct {
	Topic string
	IsKey bool
}

func (s TopicNameStrategy) SubjectName() string {
	return s.Topic + keySuffix(s.IsKey)
}

// RecordNameStrategy uses the fully qualified record name as the subject,
// decoupling the schema from any particular topic.
type RecordNameStrategy struct {
	Record string
}

func (s RecordNameStrategy) SubjectName() string {
	return s.Record
}

// TopicRecordNameStrategy combines topic and record name, which allows a
// topic to carry several record types with independent compatibility
// histories.
type TopicRecordNameStrategy struct {
	Topic  string
	Record string
}

func (s TopicRecordNameStrategy) SubjectName() string {
	return s.Topic + "-" + s.Record
}

// CustomStrategy uses the given name verbatim as the subject.
type CustomStrategy struct {
	Name string
}

func (s CustomStrategy) SubjectName() string {
	return s.Name
}

func keySuffix(isKey bool) string {
	if isKey {
		return "-key"
	}
	return "-value"
}

// Reference names a schema registered under another subject that this
// schema depends on. References are forwarded to the registry on
// registration; resolving them while fetching is not supported, fetched
// schemas must be self contained.
type Reference struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Version int    `json:"version"`
}

// SchemaDetails describes which schema a lookup, registration or serializer
// request is about.
type SchemaDetails struct {
	// Format selects the schema language.
	Format Format

	// Version pins a specific subject version. Zero means latest.
	Version int

	// Strategy derives the registry subject. Required for every subject
	// based operation.
	Strategy SubjectNamingStrategy

	// References are forwarded to the registry when the schema is
	// registered.
	References []Reference
}
