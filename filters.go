package sshlines

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Filter is a function that returns true when a line should be kept
type Filter func(line []byte) bool

var whitespace = [256]bool{
	' ':  true,
	'\r': true,
	'\n': true,
	'\t': true,
}

// FilterNotEmpty keeps lines that contain at least one non-whitespace character
func FilterNotEmpty() Filter {
	return func(line []byte) bool {
		for _, b := range line {
			if !whitespace[b] {
				return true
			}
		}
		return false
	}
}

// FilterIsJSONObject keeps lines whose first non-whitespace byte is '{'
func FilterIsJSONObject() Filter {
	return func(line []byte) bool {
		for _, b := range line {
			if whitespace[b] {
				continue
			}
			return b == '{'
		}
		return false
	}
}

// FilterValidJSON keeps lines that are valid json
func FilterValidJSON() Filter {
	return func(line []byte) bool {
		return jsoniter.ConfigFastest.Valid(line)
	}
}

// JSONValueFilter checks a json value
type JSONValueFilter func(val interface{}) bool

// JSONFieldFilter checks the value of a top level json field
type JSONFieldFilter struct {
	Field  string
	Filter JSONValueFilter
}

// FilterJSONFields keeps json object lines where every field filter passes.
// A line missing one of the fields is dropped.
func FilterJSONFields(filters []JSONFieldFilter) Filter {
	return func(line []byte) bool {
		iter := jsoniter.ConfigFastest.BorrowIterator(line)
		defer jsoniter.ConfigFastest.ReturnIterator(iter)
		done := make([]bool, len(filters))
		remaining := len(filters)
		keep := true
		iter.ReadObjectCB(func(iter *jsoniter.Iterator, field string) bool {
			var val interface{}
			read := false
			for i := range filters {
				if done[i] || filters[i].Field != field {
					continue
				}
				if !read {
					val = iter.Read()
					read = true
				}
				done[i] = true
				remaining--
				if !filters[i].Filter(val) {
					keep = false
					return false
				}
			}
			if !read {
				iter.Skip()
			}
			return remaining > 0
		})
		return keep && remaining == 0
	}
}

// StringValueFilter checks a string value
func StringValueFilter(check func(val string) bool) JSONValueFilter {
	return func(val interface{}) bool {
		strVal, ok := val.(string)
		if !ok {
			return false
		}
		return check(strVal)
	}
}

// TimeValueFilter checks an RFC3339 time value
func TimeValueFilter(check func(val time.Time) bool) JSONValueFilter {
	return StringValueFilter(func(val string) bool {
		tm, err := time.Parse(time.RFC3339, val)
		if err != nil {
			return false
		}
		return check(tm)
	})
}
