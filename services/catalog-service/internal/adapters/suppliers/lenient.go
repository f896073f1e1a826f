package suppliers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// Number число из ответа поставщика. Принимает JSON число или строку с числом,
// все остальное (и бесконечности, NaN) считается отсутствующим значением.
type Number struct {
	value float64
	valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}

	var f float64
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = parsed
	} else if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Number{value: f, valid: true}
	return nil
}

// Valid сообщает, что значение присутствует
func (n Number) Valid() bool {
	return n.valid
}

// Float возвращает значение или def, если его нет
func (n Number) Float(def float64) float64 {
	if !n.valid {
		return def
	}
	return n.value
}

// Int возвращает целую часть значения
func (n Number) Int() (int, bool) {
	if !n.valid || math.Abs(n.value) > math.MaxInt32 {
		return 0, false
	}
	return int(math.Trunc(n.value)), true
}

// IntPtr возвращает целую часть значения или nil
func (n Number) IntPtr() *int {
	v, ok := n.Int()
	if !ok {
		return nil
	}
	return &v
}

// Text строка из ответа поставщика. Число принимается в исходной записи,
// объекты, массивы и булевы значения считаются отсутствующими.
type Text struct {
	value string
	valid bool
}

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}

	switch {
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*t = Text{value: s, valid: true}
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return nil
		}
		*t = Text{value: num.String(), valid: true}
	}
	return nil
}

// Valid сообщает, что значение присутствует
func (t Text) Valid() bool {
	return t.valid
}

// String возвращает значение или пустую строку
func (t Text) String() string {
	return t.value
}

// Ptr возвращает значение или nil, если его нет или оно пустое
func (t Text) Ptr() *string {
	if !t.valid || strings.TrimSpace(t.value) == "" {
		return nil
	}
	v := t.value
	return &v
}

// List массив из ответа поставщика. Не массив считается пустым списком,
// элемент, который не удалось разобрать, становится нулевым значением.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	*l = nil

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil
	}

	out := make(List[T], len(raws))
	for i, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			out[i] = v
		}
	}
	*l = out
	return nil
}

// First возвращает первый элемент списка
func (l List[T]) First() (T, bool) {
	var zero T
	if len(l) == 0 {
		return zero, false
	}
	return l[0], true
}
