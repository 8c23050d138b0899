package emit

import "testing"

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     string
	}{
		{name: "equal", old: "a\nb\n", new: "a\nb\n", want: ""},
		{
			name: "changed line",
			old:  "a\nb\nc\n",
			new:  "a\nB\nc\n",
			want: "--- x.go\n+++ x.go (generated)\n-b\n+B\n",
		},
		{
			name: "new file",
			old:  "",
			new:  "a\nb\n",
			want: "--- x.go\n+++ x.go (generated)\n+a\n+b\n",
		},
		{
			name: "removed lines",
			old:  "a\nb\nc\n",
			new:  "a\n",
			want: "--- x.go\n+++ x.go (generated)\n-b\n-c\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Diff("x.go", []byte(tc.old), []byte(tc.new)); got != tc.want {
				t.Errorf("Diff =\n%s\nwant\n%s", got, tc.want)
			}
		})
	}
}
