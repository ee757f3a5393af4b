package rules

import "testing"

// namedContext mirrors a named context map nested inside another context.
type namedContext map[string]any

type (
	label  string
	labels map[label]label
)

func TestLookup(t *testing.T) {
	ctx := map[string]any{
		"userId": "u1",
		"user": map[string]any{
			"plan":    "pro",
			"profile": map[string]any{"country": "DE"},
			"tags":    map[string]string{"team": "growth"},
		},
		"account": namedContext{"tier": "gold", "owner": namedContext{"country": "FR"}},
		"labels":  labels{"region": "eu"},
		"score": 10,
	}

	tests := []struct {
		field  string
		want   any
		wantOK bool
	}{
		{field: "userId", want: "u1", wantOK: true},
		{field: "user.plan", want: "pro", wantOK: true},
		{field: "user.profile.country", want: "DE", wantOK: true},
		{field: "user.tags.team", want: "growth", wantOK: true},
		{field: "score", want: 10, wantOK: true},
		{field: "account.tier", want: "gold", wantOK: true},
		{field: "account.owner.country", want: "FR", wantOK: true},
		{field: "labels.region", want: label("eu"), wantOK: true},
		{field: "account.missing", wantOK: false},
		{field: "user.missing", wantOK: false},
		{field: "score.value", wantOK: false},
		{field: "user.plan.name", wantOK: false},
		{field: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := Lookup(ctx, tt.field)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.field, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("Lookup(%q) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestLookup_NilContext(t *testing.T) {
	if v, ok := Lookup(nil, "user.plan"); ok || v != nil {
		t.Fatalf("Lookup(nil) = %v, %v", v, ok)
	}
}
