package storage

import (
	list "github.com/bahlo/generic-list-go"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type DataType byte

const (
	TypeNone DataType = iota
	TypeString
	TypeList
	TypeSet
	TypeHash
	TypeZSet
)

// String returns the name reported by the TYPE command
func (t DataType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeSet:
		return "set"
	case TypeHash:
		return "hash"
	case TypeZSet:
		return "zset"
	default:
		return "none"
	}
}

// ParseDataType is the inverse of DataType.String. Unknown names map to TypeNone
func ParseDataType(name string) DataType {
	switch name {
	case "string":
		return TypeString
	case "list":
		return TypeList
	case "set":
		return TypeSet
	case "hash":
		return TypeHash
	case "zset":
		return TypeZSet
	default:
		return TypeNone
	}
}

// Entity generic container for value.
// The dynamic type of Value depends on Type:
//
//	TypeString: string
//	TypeList:   *list.List[string]
//	TypeSet:    *Set
//	TypeHash:   *orderedmap.OrderedMap[string, string]
//	TypeZSet:   *SortedSet
type Entity struct {
	Type  DataType
	Value any
}

// FieldValue is a single hash field with its value
type FieldValue struct {
	Field string
	Value string
}

// NewString constructs a string entity
func NewString(s string) *Entity {
	return &Entity{Type: TypeString, Value: s}
}

// NewList constructs a list entity holding elems from head to tail
func NewList(elems ...string) *Entity {
	l := list.New[string]()
	for _, e := range elems {
		l.PushBack(e)
	}
	return &Entity{Type: TypeList, Value: l}
}

// NewSet constructs a set entity, duplicates are collapsed
func NewSet(members ...string) *Entity {
	s := newSet()
	for _, m := range members {
		s.Add(m)
	}
	return &Entity{Type: TypeSet, Value: s}
}

// NewHash constructs a hash entity. Later pairs overwrite earlier ones with the same field
func NewHash(fields ...FieldValue) *Entity {
	h := orderedmap.New[string, string]()
	for _, fv := range fields {
		h.Set(fv.Field, fv.Value)
	}
	return &Entity{Type: TypeHash, Value: h}
}

// NewZSet constructs a sorted set entity
func NewZSet(members ...ScoredMember) *Entity {
	z := newSortedSet()
	for _, m := range members {
		z.Set(m.Member, m.Score)
	}
	return &Entity{Type: TypeZSet, Value: z}
}

// Len returns the number of elements held by a container entity. Strings report 1
func (e *Entity) Len() int {
	switch v := e.Value.(type) {
	case *list.List[string]:
		return v.Len()
	case *Set:
		return v.Len()
	case *orderedmap.OrderedMap[string, string]:
		return v.Len()
	case *SortedSet:
		return v.Len()
	default:
		return 1
	}
}

// Clone returns a deep copy so callers never share state with the keyspace
func (e *Entity) Clone() *Entity {
	switch v := e.Value.(type) {
	case string:
		return NewString(v)
	case *list.List[string]:
		return NewList(listValues(v)...)
	case *Set:
		return NewSet(v.Members()...)
	case *orderedmap.OrderedMap[string, string]:
		return NewHash(hashPairs(v)...)
	case *SortedSet:
		return NewZSet(v.Range(0, v.Len()-1)...)
	default:
		return &Entity{Type: e.Type, Value: e.Value}
	}
}

func (e *Entity) asString() string { return e.Value.(string) }
func (e *Entity) asList() *list.List[string] { return e.Value.(*list.List[string]) }
func (e *Entity) asSet() *Set { return e.Value.(*Set) }
func (e *Entity) asHash() *orderedmap.OrderedMap[string, string] { return e.Value.(*orderedmap.OrderedMap[string, string]) }
func (e *Entity) asZSet() *SortedSet { return e.Value.(*SortedSet) }

// expect fails with ErrTypeMismatch unless e is nil or holds t
func expect(e *Entity, t DataType) error {
	if e != nil && e.Type != t {
		return ErrTypeMismatch
	}
	return nil
}
