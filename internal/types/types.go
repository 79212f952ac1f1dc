// Package types holds the shared data structures used across the
// application. Handlers, storage and utils all import types without
// depending on each other.
package types

// Student is one persisted record as returned to clients.
//
// UUID is historical naming: it is the table's autoincrement integer key,
// assigned once at creation and never reused.
type Student struct {
	UUID     int64   `json:"uuid"`
	Class    int     `json:"class"`
	Name     string  `json:"name"`
	Sex      string  `json:"sex"`
	Age      int     `json:"age"`
	Siblings int     `json:"siblings"`
	GPA      float64 `json:"gpa"`
}

// StudentFields is the six-field payload accepted by create and update.
//
// Every field is a pointer so that a legitimately zero value (siblings: 0)
// can be told apart from a missing one. validator treats a non-nil pointer
// as present regardless of the value it points to.
//
// There is no uuid field: a uuid sent by the client is dropped
// by the JSON decoder and can never reach an UPDATE statement.
type StudentFields struct {
	Class    *int     `json:"class"    validate:"required"`
	Name     *string  `json:"name"     validate:"required"`
	Sex      *string  `json:"sex"      validate:"required"`
	Age      *int     `json:"age"      validate:"required"`
	Siblings *int     `json:"siblings" validate:"required"`
	GPA      *float64 `json:"gpa"      validate:"required"`
}

// Student materialises the payload as a record with the given id.
// It must only be called on validated fields.
func (f StudentFields) Student(uuid int64) Student {
	return Student{
		UUID:     uuid,
		Class:    *f.Class,
		Name:     *f.Name,
		Sex:      *f.Sex,
		Age:      *f.Age,
		Siblings: *f.Siblings,
		GPA:      *f.GPA,
	}
}

// Fields is the inverse of StudentFields.Student.
func (s Student) Fields() StudentFields {
	return StudentFields{
		Class:    &s.Class,
		Name:     &s.Name,
		Sex:      &s.Sex,
		Age:      &s.Age,
		Siblings: &s.Siblings,
		GPA:      &s.GPA,
	}
}
