package middlewares

import (
	"testing"

	"meditour-backend/models"
)

func TestReplayState(t *testing.T) {
	body := []byte(`{"id":1}`)
	cases := []struct {
		name      string
		rec       models.IdempotencyKey
		hash      string
		conflict  bool
		completed bool
	}{
		{"pending record lets the handler run", models.IdempotencyKey{RequestHash: "h"}, "h", false, false},
		{"completed record must not run the handler again", models.IdempotencyKey{RequestHash: "h", ResponseStatus: 201, ResponseBody: body}, "h", false, true},
		{"status without a stored body is still pending", models.IdempotencyKey{RequestHash: "h", ResponseStatus: 201}, "h", false, false},
		{"key reuse with a different request conflicts", models.IdempotencyKey{RequestHash: "other", ResponseStatus: 201, ResponseBody: body}, "h", true, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			conflict, completed := replayState(&tt.rec, tt.hash)
			if conflict != tt.conflict || completed != tt.completed {
				t.Fatalf("replayState = (%v, %v), want (%v, %v)", conflict, completed, tt.conflict, tt.completed)
			}
		})
	}
}
