package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseUserID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseUserID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE users;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseUserID(input)

		if err == nil {
			// Valid ID must round-trip
			roundTrip, err2 := ParseUserID(id.String())
			if err2 != nil {
				t.Errorf("Valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("Round-trip changed ID value")
			}
		}

		if !utf8.ValidString(input) && err == nil {
			t.Error("Non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAllIDs ensures all ID types behave consistently: the underlying
// validation is shared, so acceptance and rejection must agree.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errPosition := ParsePositionID(input)
		_, errClaim := ParseClaimID(input)
		_, errPromise := ParsePromiseID(input)
		_, errProject := ParseProjectID(input)
		_, errQuestion := ParseQuestionID(input)

		if errUser == nil {
			if errPosition != nil || errClaim != nil || errPromise != nil || errProject != nil || errQuestion != nil {
				t.Error("Inconsistent parsing across ID types")
			}
		} else {
			if errPosition == nil || errClaim == nil || errPromise == nil || errProject == nil || errQuestion == nil {
				t.Error("Inconsistent rejection across ID types")
			}
		}
	})
}
