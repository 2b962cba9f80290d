package termfix

import "testing"

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want map[string]string
	}{
		{
			name: "warp",
			env:  map[string]string{"TERM_PROGRAM": "WarpTerminal", "TERM": "xterm-256color"},
			want: map[string]string{"TERM": "dumb", "COLORTERM": "truecolor"},
		},
		{
			name: "warp keeps existing COLORTERM",
			env:  map[string]string{"TERM_PROGRAM": "WarpTerminal", "COLORTERM": "24bit"},
			want: map[string]string{"TERM": "dumb", "COLORTERM": "24bit"},
		},
		{
			name: "other terminal untouched",
			env:  map[string]string{"TERM_PROGRAM": "iTerm.app", "TERM": "xterm-256color"},
			want: map[string]string{"TERM": "xterm-256color", "COLORTERM": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{}
			for k, v := range tt.env {
				env[k] = v
			}
			apply(func(k string) string { return env[k] }, func(k, v string) error {
				env[k] = v
				return nil
			})
			for k, want := range tt.want {
				if env[k] != want {
					t.Errorf("%s = %q, want %q", k, env[k], want)
				}
			}
		})
	}
}
