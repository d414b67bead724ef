package testutil

import (
	"reflect"
	"testing"
)

type port struct {
	Name string
	Rate int
}

func TestJS(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want string
	}{
		{
			name: "simple struct",
			arg:  port{"In", 1},
			want: `{"Name":"In","Rate":1}`,
		},
		{
			name: "nested struct",
			arg: struct {
				Port port
				ID   int
			}{port{"Out", 2}, 1},
			want: `{"Port":{"Name":"Out","Rate":2},"ID":1}`,
		},
		{
			name: "unmarshalable",
			arg:  make(chan int),
			want: "(chan int)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JS(tt.arg)
			if tt.name == "unmarshalable" {
				if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
					t.Errorf("JS() = %v", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("JS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDwimjs(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want interface{}
	}{
		{
			name: "JSON string",
			arg:  `{"port":"In","n":3}`,
			want: map[string]interface{}{"port": "In", "n": float64(3)},
		},
		{
			name: "JSON bytes",
			arg:  []byte(`[1,2]`),
			want: []interface{}{float64(1), float64(2)},
		},
		{
			name: "non-JSON string",
			arg:  "tokens(In, 1)",
			want: "tokens(In, 1)",
		},
		{
			name: "other",
			arg:  12345,
			want: 12345,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dwimjs(tt.arg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dwimjs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameJSON(t *testing.T) {
	if !SameJSON(map[string]int{"n": 1}, `{"n":1}`) {
		t.Fatal("map and string differ")
	}
	if SameJSON([]int{1}, []int{2}) {
		t.Fatal("different slices are the same")
	}
}
