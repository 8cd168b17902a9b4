package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/vango-dev/agreed/internal/artifact"
	"github.com/vango-dev/agreed/pkg/fstree"
	"github.com/vango-dev/agreed/pkg/model"
	"github.com/vango-dev/agreed/pkg/router"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E120",
			wantMsg: "Invalid agreed config",
			wantCat: CategoryConfig,
		},
		{
			name:    "route conflict",
			code:    "E202",
			wantMsg: "Route conflict",
			wantCat: CategoryRoute,
		},
		{
			name:    "publish error",
			code:    "E206",
			wantMsg: "Artifact publish failed",
			wantCat: CategoryPublish,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "agreed.json")
	if err.Message != `file "agreed.json" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	if got, want := New("E203").Error(), "E203: Duplicate model name"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err := &Error{Message: "plain"}
	if err.Error() != "plain" {
		t.Errorf("Error() = %q, want %q", err.Error(), "plain")
	}
}

func TestError_Builders(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := New("E204").
		WithLocation("src/config.tsx", 0).
		WithDetail("rename failed").
		WithSuggestion("free some space").
		WithItems("a", "b").
		Wrap(cause)

	if err.Location.String() != "src/config.tsx" {
		t.Errorf("Location = %q", err.Location.String())
	}
	if err.Detail != "rename failed" || err.Suggestion != "free some space" {
		t.Errorf("Detail/Suggestion = %q/%q", err.Detail, err.Suggestion)
	}
	if len(err.Items) != 2 {
		t.Errorf("Items = %v", err.Items)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestLocation_String(t *testing.T) {
	var nilLoc *Location
	tests := []struct {
		loc  *Location
		want string
	}{
		{nilLoc, ""},
		{&Location{File: "agreed.yaml"}, "agreed.yaml"},
		{&Location{File: "agreed.yaml", Line: 4}, "agreed.yaml:4"},
	}
	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E120") != nil {
		t.Error("FromError(nil) should return nil")
	}

	plain := fmt.Errorf("unexpected token")
	err := FromError(plain, "E120")
	if err.Code != "E120" || err.Detail != "unexpected token" {
		t.Errorf("FromError() = %+v", err)
	}
	if !stderrors.Is(err, plain) {
		t.Error("FromError should wrap the original error")
	}

	coded := New("E141")
	if FromError(fmt.Errorf("load: %w", coded), "E120") != coded {
		t.Error("FromError should return an existing coded error unchanged")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantItem string
	}{
		{
			name:     "scan",
			err:      &fstree.ScanError{Root: "src/pages", Err: fs.ErrNotExist},
			wantCode: "E201",
		},
		{
			name: "route conflict",
			err: &router.RouteConflictError{Conflicts: []router.RouteConflict{
				{Path: "/about", Sources: []string{"about.tsx", "about/index.tsx"}},
			}},
			wantCode: "E202",
			wantItem: "/about claimed by about.tsx, about/index.tsx",
		},
		{
			name: "duplicate model",
			err: &model.DuplicateModelError{Duplicates: []model.Duplicate{
				{Name: "cart", Paths: []string{"cart.js", "cart.ts"}},
			}},
			wantCode: "E203",
			wantItem: "cart: cart.js, cart.ts",
		},
		{
			name:     "emit io",
			err:      &artifact.EmitIOError{Op: "rename", Path: "src/config.tsx", Err: fs.ErrPermission},
			wantCode: "E204",
		},
		{
			name:     "unsupported format",
			err:      &artifact.UnsupportedFormatError{Path: "routes.json", Ext: ".json"},
			wantCode: "E205",
		},
		{
			name:     "already coded",
			err:      fmt.Errorf("load: %w", New("E121")),
			wantCode: "E121",
		},
		{
			name:     "unrecognized",
			err:      fmt.Errorf("boom"),
			wantCode: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.wantItem != "" && (len(got.Items) != 1 || got.Items[0] != tt.wantItem) {
				t.Errorf("Items = %v, want [%q]", got.Items, tt.wantItem)
			}
			if tt.wantCode != "E121" && got.Wrapped != tt.err {
				t.Error("classified error should wrap the original")
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) should return nil")
	}
}

func TestClassifyAll(t *testing.T) {
	err := stderrors.Join(
		&router.RouteConflictError{Conflicts: []router.RouteConflict{{Path: "/", Sources: []string{"a", "b"}}}},
		&model.DuplicateModelError{Duplicates: []model.Duplicate{{Name: "x", Paths: []string{"x.js", "x.ts"}}}},
	)

	got := ClassifyAll(err)
	if len(got) != 2 {
		t.Fatalf("len(ClassifyAll) = %d, want 2", len(got))
	}
	if got[0].Code != "E202" || got[1].Code != "E203" {
		t.Errorf("codes = %s, %s, want E202, E203", got[0].Code, got[1].Code)
	}

	if ClassifyAll(nil) != nil {
		t.Error("ClassifyAll(nil) should return nil")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E202").
		WithItems("/about claimed by about.tsx, about/index.tsx").
		WithSuggestion("Rename one unit")

	out := err.Format()
	for _, want := range []string{
		"ERROR E202: Route conflict",
		"• /about claimed by about.tsx, about/index.tsx",
		"Hint: Rename one unit",
		"Learn more: https://vango.dev/docs/agreed/errors/E202",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
}

func TestFormatUncoded(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := (&Error{Message: "something broke"}).Format()
	if !strings.Contains(out, "ERROR: something broke") {
		t.Errorf("Format() = %q", out)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E203").WithLocation("src/models", 0).WithItems("cart: cart.js, cart.ts")
	want := "src/models: E203: Duplicate model name (cart: cart.js, cart.ts)"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	Fprint(&b, stderrors.Join(New("E121"), New("E122")))
	out := b.String()
	if !strings.Contains(out, "E121") || !strings.Contains(out, "E122") {
		t.Errorf("Fprint() = %q", out)
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		seen[c] = true
	}
	for _, want := range []string{"E120", "E141", "E201", "E202", "E203", "E204", "E205", "E206", "E207"} {
		if !seen[want] {
			t.Errorf("GetAllCodes() missing %s", want)
		}
	}
}

func TestGetTemplate(t *testing.T) {
	tmpl, ok := GetTemplate("E201")
	if !ok {
		t.Fatal("GetTemplate(E201) not found")
	}
	if tmpl.Category != CategoryScan {
		t.Errorf("Category = %q, want %q", tmpl.Category, CategoryScan)
	}
	if _, ok := GetTemplate("E999"); ok {
		t.Error("GetTemplate(E999) should not be found")
	}
}

func TestWrapText(t *testing.T) {
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
	lines := wrapText("the previous artifact was kept on disk", 12)
	for _, l := range lines {
		if len(l) > 12 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "the previous artifact was kept on disk" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if got := red("x"); got != colorRed+"x"+colorReset {
		t.Errorf("red() = %q", got)
	}
	DisableColors()
	if got := red("x"); got != "x" {
		t.Errorf("red() with colors disabled = %q", got)
	}
	EnableColors()
}
