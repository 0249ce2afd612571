package pymend

import (
	"reflect"
	"testing"
)

func TestParseSelectionIndices(t *testing.T) {
	cases := []struct {
		input   string
		max     int
		want    []int
		exclude bool
		wantErr bool
	}{
		{"", 5, nil, false, false},
		{"1", 5, []int{0}, false, false},
		{"1,3,5", 5, []int{0, 2, 4}, false, false},
		{"3,1", 5, []int{0, 2}, false, false},
		{"-2", 3, []int{0, 2}, true, false},
		{"0", 3, nil, false, true},
		{"4", 3, nil, false, true},
		{"x", 3, nil, false, true},
	}

	for _, c := range cases {
		got, exclude, err := ParseSelectionIndices(c.input, c.max)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseSelectionIndices(%q, %d): expected error", c.input, c.max)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSelectionIndices(%q, %d): %v", c.input, c.max, err)
			continue
		}
		if !reflect.DeepEqual(got, c.want) || exclude != c.exclude {
			t.Errorf("ParseSelectionIndices(%q, %d) = %v/%v, want %v/%v",
				c.input, c.max, got, exclude, c.want, c.exclude)
		}
	}
}
