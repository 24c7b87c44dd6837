package reviewpipe

import (
	"strings"
	"testing"
)

func TestValidateRow_Valid(t *testing.T) {
	// WHAT: A normalized row within all bounds produces no errors.
	// WHY: The validator must not reject the common case.
	raw := rowOf("source", "Amazon", "rating", "4.5", "max_rating", "5")
	rev := Normalize(raw)
	if errs := validateRow(1, raw, rev); len(errs) != 0 {
		t.Fatalf("expected no errors, got %d: %v", len(errs), errs[0].Render())
	}
}

func TestValidateRow_ImportanceBelowOne(t *testing.T) {
	// WHAT: importance < 1 is rejected with a field-scoped error.
	// WHY: Importance is a 1-based weight; zero and negatives are nonsense.
	raw := rowOf("importance", "0", "text", "ok")
	rev := Normalize(raw)
	errs := validateRow(3, raw, rev)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].FieldPath != "importance" {
		t.Errorf("field: got %q, want importance", errs[0].FieldPath)
	}
	msg := errs[0].Render()
	for _, part := range []string{"Строка #3", "'importance'", "«0»", "text"} {
		if !strings.Contains(msg, part) {
			t.Errorf("rendered error missing %q: %s", part, msg)
		}
	}
}

func TestValidateRow_NegativeRatings(t *testing.T) {
	// WHAT: Negative rating and max_rating each produce their own error.
	// WHY: One error per violated field lets the uploader fix everything at once.
	raw := rowOf("rating", "-1", "max_rating", "-5")
	rev := Normalize(raw)
	errs := validateRow(1, raw, rev)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.FieldPath] = true
	}
	if !fields["rating"] || !fields["max_rating"] {
		t.Errorf("expected rating and max_rating errors, got %v", fields)
	}
}

func TestValidateRow_SourceTooLong(t *testing.T) {
	// WHAT: source longer than 100 characters is rejected.
	// WHY: The persistence schema bounds the source column.
	raw := rowOf("source", strings.Repeat("ы", 101))
	rev := Normalize(raw)
	errs := validateRow(1, raw, rev)
	if len(errs) != 1 || errs[0].FieldPath != "source" {
		t.Fatalf("expected one source error, got %v", errs)
	}
}

func TestValidateRow_NormalizedOutOfBounds(t *testing.T) {
	// WHAT: A rating above its scale fails the 0-100 bound, and the
	// rendered error shows the computed percentage, not a raw cell.
	// WHY: normalized_rating never appears in the source row; dumping
	// the absent cell would show «<nil>» instead of the bad value.
	raw := rowOf("rating", "200", "max_rating", "5")
	rev := Normalize(raw)
	errs := validateRow(2, raw, rev)
	if len(errs) != 1 || errs[0].FieldPath != "normalized_rating" {
		t.Fatalf("expected one normalized_rating error, got %v", errs)
	}
	msg := errs[0].Render()
	if !strings.Contains(msg, "«4000»") {
		t.Errorf("rendered error should carry the computed value: %s", msg)
	}
}

func TestValidateRow_SourceLengthIsRuneCount(t *testing.T) {
	// WHAT: A 100-rune Cyrillic source passes even though it is 200 bytes.
	// WHY: The limit is characters, not bytes; review sources are Russian text.
	raw := rowOf("source", strings.Repeat("ы", 100))
	rev := Normalize(raw)
	if errs := validateRow(1, raw, rev); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestReviewIsEmpty_ImportanceOnly(t *testing.T) {
	// WHAT: A row carrying only importance still classifies as empty.
	// WHY: The meaningless-row predicate deliberately ignores importance.
	rev := Normalize(rowOf("importance", "5"))
	if !rev.IsEmpty() {
		t.Error("importance-only row should be empty")
	}
}

func TestEmptyRowError_Render(t *testing.T) {
	// WHAT: The empty-row error names the row and dumps the original data.
	// WHY: Users need to find the blank line in their source file.
	raw := rowOf("source", "", "text", "")
	msg := emptyRowError(7, raw).Render()
	if !strings.Contains(msg, "Строка #7") || !strings.Contains(msg, "не содержит значимых данных") {
		t.Errorf("unexpected message: %s", msg)
	}
}
