// Package manifest implements the component manifest validator: field
// checks, a multi-pass walk of a decoded ComponentDecl, and a
// strong-dependency graph with cycle detection.
//
// Grounded on AIStore's cmn/cos error taxonomy (a closed, tagged
// set of sentinel types rather than wrapped stdlib errors) adapted
// from single-value errors to the validator's batch ErrorList, the way
// a manifest may carry many independent defects at once.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package manifest

import "fmt"

// DeclField names the declaration and field an error refers to.
type DeclField struct {
	Decl  string
	Field string
}

// ErrCode discriminates the closed error taxonomy a manifest defect
// can fall into.
type ErrCode int

const (
	MissingField ErrCode = iota
	EmptyField
	ExtraneousField
	DuplicateField
	InvalidField
	FieldTooLong
	OfferTargetEqualsSource
	InvalidChild
	InvalidCollection
	InvalidStorage
	InvalidEnvironment
	InvalidCapability
	InvalidRunner
	InvalidEventStream
	MultipleRunnersSpecified
	DependencyCycle
	InvalidPathOverlap
)

// Error is the tagged-union error type every validation defect is
// reported as; which fields are populated depends on Code.
type Error struct {
	Code            ErrCode
	Field           DeclField // the field-level codes, DuplicateField and InvalidChild/.../EventStream; only Decl for InvalidPathOverlap
	Value           string    // DuplicateField's offending value; InvalidChild/Collection/.../EventStream's referenced name
	A, B            string    // OfferTargetEqualsSource's decl/target; A alone is InvalidPathOverlap's other decl
	Path, OtherPath string    // InvalidPathOverlap
	Decl            string    // MultipleRunnersSpecified's component name
	Cycle           string    // DependencyCycle's rendered cycle text
}

func errMissingField(decl, field string) *Error {
	return &Error{Code: MissingField, Field: DeclField{decl, field}}
}

func errEmptyField(decl, field string) *Error {
	return &Error{Code: EmptyField, Field: DeclField{decl, field}}
}

func errExtraneousField(decl, field string) *Error {
	return &Error{Code: ExtraneousField, Field: DeclField{decl, field}}
}

func errDuplicateField(decl, field, value string) *Error {
	return &Error{Code: DuplicateField, Field: DeclField{decl, field}, Value: value}
}

func errInvalidField(decl, field string) *Error {
	return &Error{Code: InvalidField, Field: DeclField{decl, field}}
}

func errFieldTooLong(decl, field string) *Error {
	return &Error{Code: FieldTooLong, Field: DeclField{decl, field}}
}

func errOfferTargetEqualsSource(decl, target string) *Error {
	return &Error{Code: OfferTargetEqualsSource, A: decl, B: target}
}

func errInvalidChild(decl, field, name string) *Error {
	return &Error{Code: InvalidChild, Field: DeclField{decl, field}, Value: name}
}

func errInvalidCollection(decl, field, name string) *Error {
	return &Error{Code: InvalidCollection, Field: DeclField{decl, field}, Value: name}
}

func errInvalidStorage(decl, field, name string) *Error {
	return &Error{Code: InvalidStorage, Field: DeclField{decl, field}, Value: name}
}

func errInvalidEnvironment(decl, field, name string) *Error {
	return &Error{Code: InvalidEnvironment, Field: DeclField{decl, field}, Value: name}
}

func errInvalidCapability(decl, field, name string) *Error {
	return &Error{Code: InvalidCapability, Field: DeclField{decl, field}, Value: name}
}

func errInvalidRunner(decl, field, name string) *Error {
	return &Error{Code: InvalidRunner, Field: DeclField{decl, field}, Value: name}
}

func errInvalidEventStream(decl, field, name string) *Error {
	return &Error{Code: InvalidEventStream, Field: DeclField{decl, field}, Value: name}
}

func errMultipleRunnersSpecified(decl string) *Error {
	return &Error{Code: MultipleRunnersSpecified, Decl: decl}
}

func errDependencyCycle(rendered string) *Error {
	return &Error{Code: DependencyCycle, Cycle: rendered}
}

func errInvalidPathOverlap(decl, path, otherDecl, otherPath string) *Error {
	return &Error{Code: InvalidPathOverlap, Field: DeclField{Decl: decl}, Path: path, A: otherDecl, OtherPath: otherPath}
}

func (e *Error) Error() string {
	switch e.Code {
	case MissingField:
		return fmt.Sprintf("%s missing %s", e.Field.Decl, e.Field.Field)
	case EmptyField:
		return fmt.Sprintf("%s has empty %s", e.Field.Decl, e.Field.Field)
	case ExtraneousField:
		return fmt.Sprintf("%s has extraneous %s", e.Field.Decl, e.Field.Field)
	case DuplicateField:
		return fmt.Sprintf("%q is a duplicate %s %s", e.Value, e.Field.Decl, e.Field.Field)
	case InvalidField:
		return fmt.Sprintf("%s has invalid %s", e.Field.Decl, e.Field.Field)
	case FieldTooLong:
		return fmt.Sprintf("%s's %s is too long", e.Field.Decl, e.Field.Field)
	case OfferTargetEqualsSource:
		return fmt.Sprintf("%q target %q is same as source", e.A, e.B)
	case InvalidChild:
		return fmt.Sprintf("%q is referenced in %s.%s but it does not appear in children", e.Value, e.Field.Decl, e.Field.Field)
	case InvalidCollection:
		return fmt.Sprintf("%q is referenced in %s.%s but it does not appear in collections", e.Value, e.Field.Decl, e.Field.Field)
	case InvalidStorage:
		return fmt.Sprintf("%q is referenced in %s.%s but it does not appear in storage", e.Value, e.Field.Decl, e.Field.Field)
	case InvalidEnvironment:
		return fmt.Sprintf("%q is referenced in %s.%s but it does not appear in environments", e.Value, e.Field.Decl, e.Field.Field)
	case InvalidCapability:
		return fmt.Sprintf("%q is referenced in %s.%s but it does not appear in capabilities", e.Value, e.Field.Decl, e.Field.Field)
	case InvalidRunner:
		return fmt.Sprintf("%q is referenced in %s.%s but it does not appear in runners", e.Value, e.Field.Decl, e.Field.Field)
	case InvalidEventStream:
		return fmt.Sprintf("%q is referenced in %s.%s but it does not appear in events", e.Value, e.Field.Decl, e.Field.Field)
	case MultipleRunnersSpecified:
		return fmt.Sprintf("%s specifies multiple runners", e.Decl)
	case DependencyCycle:
		return fmt.Sprintf("dependency cycle(s) exist: %s", e.Cycle)
	case InvalidPathOverlap:
		return fmt.Sprintf("%s %q path overlaps with %s %q", e.Field.Decl, e.Path, e.A, e.OtherPath)
	default:
		return "unknown manifest error"
	}
}

// ErrorList accumulates every defect found during one validation pass;
// nil/empty means the input is valid.
type ErrorList []error

func (l *ErrorList) add(err error) {
	if err != nil {
		*l = append(*l, err)
	}
}

func (l ErrorList) Error() string {
	if len(l) == 0 {
		return ""
	}
	if len(l) == 1 {
		return l[0].Error()
	}
	return fmt.Sprintf("%v (and %d more error(s))", l[0], len(l)-1)
}

// AsResult turns an accumulated ErrorList into the (possibly nil)
// error a validation pass returns to its caller.
func (l ErrorList) AsResult() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
