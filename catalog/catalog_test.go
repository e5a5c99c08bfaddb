package catalog

import (
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/hupe1980/agentdoc/definition"
)

const doc = "---\nname: Echo\nmodel: m1\n---\n<!-- System Prompt -->\nRepeat: {{input}}\n"

func TestCatalog_RegisterAndGet(t *testing.T) {
	cat := New()
	cat.RegisterString("echo", doc)

	def, err := cat.Get("echo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "Echo" {
		t.Errorf("name: got %q", def.Name)
	}

	// Same content parses once; both calls return the identical definition.
	again, err := cat.Get("echo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def != again {
		t.Error("expected the cached definition on the second Get")
	}
}

func TestCatalog_NotFound(t *testing.T) {
	_, err := New().Get("ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalog_ReplacedContentReparses(t *testing.T) {
	cat := New()
	cat.RegisterString("a", doc)
	first, err := cat.Get("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cat.RegisterString("a", "---\nname: Echo2\nmodel: m1\n---\n<!-- System Prompt -->\nhi\n")
	second, err := cat.Get("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Name != "Echo2" || first == second {
		t.Errorf("expected re-parse on changed content, got %q", second.Name)
	}
}

func TestCatalog_BrokenDocumentSurfacesParseError(t *testing.T) {
	cat := New()
	cat.RegisterString("broken", "---\nname: X\n")

	_, err := cat.Get("broken")
	var malformed *definition.MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedError, got %T: %v", err, err)
	}
}

func TestCatalog_ConcurrentGet(t *testing.T) {
	cat := New()
	cat.RegisterString("echo", doc)

	var wg sync.WaitGroup
	defs := make([]*definition.Definition, 8)
	for i := range defs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			def, err := cat.Get("echo")
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			defs[i] = def
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(defs); i++ {
		if defs[i] != defs[0] {
			t.Fatal("concurrent first readers must converge on one cached definition")
		}
	}
}

func TestCatalog_IDs(t *testing.T) {
	cat := New()
	cat.RegisterString("b", doc)
	cat.RegisterString("a", doc)

	ids := cat.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("ids: got %v", ids)
	}
	if cat.Len() != 2 {
		t.Errorf("len: got %d", cat.Len())
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"echo.md":            {Data: []byte(doc)},
		"other.md":           {Data: []byte(doc)},
		"README.txt":         {Data: []byte("not an agent")},
		"fragments/tone.md":  {Data: []byte("Be kind.\n")},
		"fragments/sign.txt": {Data: []byte("-- the team")},
		"fragments/skip.bin": {Data: []byte{0x00}},
	}

	cat, fragments, err := Load(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := cat.IDs()
	if len(ids) != 2 || ids[0] != "echo" || ids[1] != "other" {
		t.Errorf("ids: got %v", ids)
	}

	if tone, ok := fragments.Fragment("tone"); !ok || tone != "Be kind." {
		t.Errorf("tone fragment: got %q, %t", tone, ok)
	}
	if sign, ok := fragments.Fragment("sign"); !ok || sign != "-- the team" {
		t.Errorf("sign fragment: got %q, %t", sign, ok)
	}
	if _, ok := fragments.Fragment("skip"); ok {
		t.Error("non-text fragment should be ignored")
	}
}

func TestLoad_NoFragmentsDir(t *testing.T) {
	fsys := fstest.MapFS{"echo.md": {Data: []byte(doc)}}

	cat, fragments, err := Load(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("len: got %d", cat.Len())
	}
	if _, ok := fragments.Fragment("anything"); ok {
		t.Error("expected an empty fragment registry")
	}
}
