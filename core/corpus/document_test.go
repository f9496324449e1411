package corpus

import (
	"fmt"
	"testing"
)

const testingDocument = "&{[0 1] [3 1]}"

func TestParseDocument(t *testing.T) {
	d, e := ParseDocument("1:1 0:3")
	if e != nil {
		t.Fatalf("ParseDocument failed: %v", e)
	}
	if fmt.Sprint(d) != testingDocument {
		t.Errorf("Expecting d = %s, got %s", testingDocument, fmt.Sprint(d))
	}
	if d.Len() != 2 {
		t.Errorf("Expecting d.Len() = 2, got %d", d.Len())
	}
	if d.NumTokens() != 4 {
		t.Errorf("Expecting 4 tokens, got %v", d.NumTokens())
	}
}

func TestParseDocumentMergesDuplicates(t *testing.T) {
	d, e := ParseDocument("0:1 0:2")
	if e != nil {
		t.Fatalf("ParseDocument failed: %v", e)
	}
	if fmt.Sprint(d) != "&{[0] [3]}" {
		t.Errorf("Expecting &{[0] [3]}, got %s", fmt.Sprint(d))
	}
}

func TestParseDocumentErrors(t *testing.T) {
	for _, line := range []string{"nocolon", "0:0", "0:-2", "-1:2", ":3", "3:", "a:1", "0:x"} {
		if _, e := ParseDocument(line); e == nil {
			t.Errorf("Expecting error for %q, got nil", line)
		}
	}
}
