package dep3

const (
	descriptionFieldNameConstant = "Description"
	subjectFieldNameConstant     = "Subject"
	authorFieldNameConstant      = "Author"
	fromFieldNameConstant        = "From"
	reviewedByFieldNameConstant  = "Reviewed-by"
	ackedByFieldNameConstant     = "Acked-by"
	originFieldNameConstant      = "Origin"
)

// Well-known DEP3 field names read by report consumers.
const (
	FieldDescription = descriptionFieldNameConstant
	FieldAuthor      = authorFieldNameConstant
	FieldReviewedBy  = reviewedByFieldNameConstant
	FieldOrigin      = originFieldNameConstant
	FieldBug         = "Bug"
	FieldForwarded   = "Forwarded"
	FieldLastUpdate  = "Last-Update"
)

// fieldAliases maps preferred field names to the names they are stored under.
var fieldAliases = map[string]string{
	descriptionFieldNameConstant: subjectFieldNameConstant,
	authorFieldNameConstant:      fromFieldNameConstant,
	reviewedByFieldNameConstant:  ackedByFieldNameConstant,
}

// CanonicalFieldName resolves a field name to the key it is stored under.
func CanonicalFieldName(fieldName string) string {
	if canonicalName, aliased := fieldAliases[fieldName]; aliased {
		return canonicalName
	}
	return fieldName
}

// Field is a single stored header entry.
type Field struct {
	Name  string
	Value string
}

// Record holds the metadata extracted from one patch file. All access goes
// through the alias resolver, so Description and Subject address one slot.
type Record struct {
	values map[string]string
	order  []string
	valid  bool
}

// NewRecord constructs an empty, invalid record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Valid reports whether the record satisfied the required-field rules.
func (record *Record) Valid() bool {
	if record == nil {
		return false
	}
	return record.valid
}

// Get returns the value stored under the field name and whether it exists.
func (record *Record) Get(fieldName string) (string, bool) {
	if record == nil {
		return "", false
	}
	value, exists := record.values[CanonicalFieldName(fieldName)]
	return value, exists
}

// Value returns the stored value or an empty string when the field is absent.
func (record *Record) Value(fieldName string) string {
	value, _ := record.Get(fieldName)
	return value
}

// Has reports whether the field is present.
func (record *Record) Has(fieldName string) bool {
	_, exists := record.Get(fieldName)
	return exists
}

// Set stores the value, replacing any existing value for the field.
// It is a no-op on a nil record.
func (record *Record) Set(fieldName string, value string) {
	if record == nil {
		return
	}
	if record.values == nil {
		record.values = make(map[string]string)
	}
	canonicalName := CanonicalFieldName(fieldName)
	if _, exists := record.values[canonicalName]; !exists {
		record.order = append(record.order, canonicalName)
	}
	record.values[canonicalName] = value
}

// Delete removes the field if present.
func (record *Record) Delete(fieldName string) {
	if record == nil {
		return
	}
	canonicalName := CanonicalFieldName(fieldName)
	if _, exists := record.values[canonicalName]; !exists {
		return
	}
	delete(record.values, canonicalName)
	for index, storedName := range record.order {
		if storedName == canonicalName {
			record.order = append(record.order[:index], record.order[index+1:]...)
			break
		}
	}
}

// Len returns the number of stored fields.
func (record *Record) Len() int {
	if record == nil {
		return 0
	}
	return len(record.order)
}

// Names returns the stored field names in insertion order.
func (record *Record) Names() []string {
	if record == nil {
		return nil
	}
	return append([]string{}, record.order...)
}

// Fields returns a snapshot of the stored fields in insertion order.
func (record *Record) Fields() []Field {
	if record == nil {
		return nil
	}
	fields := make([]Field, 0, len(record.order))
	for _, storedName := range record.order {
		fields = append(fields, Field{Name: storedName, Value: record.values[storedName]})
	}
	return fields
}

// appendValue sets the field or, when it already holds a value, extends it on a new line.
func (record *Record) appendValue(fieldName string, value string) {
	existingValue, exists := record.Get(fieldName)
	if !exists {
		record.Set(fieldName, value)
		return
	}
	record.Set(fieldName, existingValue+lineSeparatorConstant+value)
}
