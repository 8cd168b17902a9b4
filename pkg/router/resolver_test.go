package router

import (
	"sync"
	"testing"
)

func sampleRoutes() []RouteDescriptor {
	return []RouteDescriptor{{
		Key:       "",
		Path:      "/",
		Exact:     true,
		Component: Lazy("index.tsx"),
		SubRoute: []RouteDescriptor{
			{
				Key:  "developer",
				Path: "/developer",
				SubRoute: []RouteDescriptor{
					{Key: "media.picture", Path: "/developer/media.picture", Exact: true, Component: Lazy("developer/media.picture.tsx")},
				},
			},
			{
				Key:  "docs",
				Path: "/docs",
				SubRoute: []RouteDescriptor{
					{Key: "[...path]", Path: "/docs/*path", Exact: true, Component: Lazy("docs/[...path].tsx")},
				},
			},
			{
				Key:       "users",
				Path:      "/users",
				Exact:     true,
				Component: Lazy("users/index.tsx"),
				SubRoute: []RouteDescriptor{
					{Key: "new", Path: "/users/new", Exact: true, Component: Lazy("users/new.tsx")},
					{Key: "profile", Path: "/users/profile", Exact: true, Component: Lazy("users/profile.tsx")},
					{
						Key:       "[id]",
						Path:      "/users/:id",
						Exact:     true,
						Component: Lazy("users/[id]/index.tsx"),
						SubRoute: []RouteDescriptor{
							{Key: "edit", Path: "/users/:id/edit", Exact: true, Component: Lazy("users/[id]/edit.tsx")},
						},
					},
				},
			},
		},
	}}
}

func TestResolverGetRoute(t *testing.T) {
	qr := NewResolver(sampleRoutes())

	tests := []struct {
		key      string
		wantOK   bool
		wantKeys []string
	}{
		{"", true, []string{"developer", "docs", "users"}},
		{"/", true, []string{"developer", "docs", "users"}},
		{"users", true, []string{"new", "profile", "[id]"}},
		{"/users/", true, []string{"new", "profile", "[id]"}},
		{"users/[id]", true, []string{"edit"}},
		{"users/:id", true, []string{"edit"}},
		{"developer", true, []string{"media.picture"}},
		{"developer/media.picture", true, nil},
		{"users.profile", true, nil},
		{"users/profile", true, nil},
		{"missing", false, nil},
		{"users/missing", false, nil},
		{"users.missing", false, nil},
	}

	for _, tt := range tests {
		got, ok := qr.GetRoute(tt.key)
		if ok != tt.wantOK {
			t.Errorf("GetRoute(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			continue
		}
		if !ok {
			if got != nil {
				t.Errorf("GetRoute(%q) = %v, want nil", tt.key, got)
			}
			continue
		}
		if gotKeys := keys(got); !equalStrings(gotKeys, tt.wantKeys) {
			t.Errorf("GetRoute(%q) keys = %v, want %v", tt.key, gotKeys, tt.wantKeys)
		}
	}
}

func TestResolverGetRouteReturnsCopy(t *testing.T) {
	qr := NewResolver(sampleRoutes())

	sub, _ := qr.GetRoute("users")
	sub[0].Key = "mutated"

	again, _ := qr.GetRoute("users")
	if again[0].Key != "new" {
		t.Errorf("GetRoute result aliases the loaded tree: %q", again[0].Key)
	}
}

func TestResolverMatch(t *testing.T) {
	qr := NewResolver(sampleRoutes())

	tests := []struct {
		url        string
		wantPath   string
		wantParams map[string]string
		wantOK     bool
	}{
		{"/", "/", map[string]string{}, true},
		{"/users", "/users", map[string]string{}, true},
		{"/users/", "/users", map[string]string{}, true},
		{"/users/new", "/users/new", map[string]string{}, true},
		{"/users/42", "/users/:id", map[string]string{"id": "42"}, true},
		{"/users/42?tab=1", "/users/:id", map[string]string{"id": "42"}, true},
		{"/users/new/edit", "/users/:id/edit", map[string]string{"id": "new"}, true},
		{"/users/hello%20world", "/users/:id", map[string]string{"id": "hello world"}, true},
		{"/docs/guide/intro", "/docs/*path", map[string]string{"path": "guide/intro"}, true},
		{"//users//42", "/users/:id", map[string]string{"id": "42"}, true},
		{"/users/./42", "/users/:id", map[string]string{"id": "42"}, true},
		{"/docs/../users/42", "/users/:id", map[string]string{"id": "42"}, true},
		{"/../users", "", nil, false},
		{"/users/%GG", "", nil, false},
		{"/users/a%00b", "", nil, false},
		{"/users\\42", "", nil, false},
		{"/docs", "", nil, false},
		{"/developer", "", nil, false},
		{"/nope", "", nil, false},
	}

	for _, tt := range tests {
		d, params, ok := qr.Match(tt.url)
		if ok != tt.wantOK {
			t.Errorf("Match(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if d.Path != tt.wantPath {
			t.Errorf("Match(%q) path = %q, want %q", tt.url, d.Path, tt.wantPath)
		}
		if len(params) != len(tt.wantParams) {
			t.Errorf("Match(%q) params = %v, want %v", tt.url, params, tt.wantParams)
			continue
		}
		for k, v := range tt.wantParams {
			if params[k] != v {
				t.Errorf("Match(%q) params[%q] = %q, want %q", tt.url, k, params[k], v)
			}
		}
	}
}

func TestResolverStaticWinsOverDynamic(t *testing.T) {
	result := mustBuild(t, BuildOptions{},
		"users/[id]/index.ts",
		"users/settings/index.ts",
		"users/[id]/edit.ts",
	)
	qr := NewResolver(result.Routes)

	if d, _, ok := qr.Match("/users/settings"); !ok || d.Path != "/users/settings" {
		t.Errorf("Match(/users/settings) = %q, %v, want static route", d.Path, ok)
	}
	// No static edit under settings: backtracks into the parameter branch.
	d, params, ok := qr.Match("/users/settings/edit")
	if !ok || d.Path != "/users/:id/edit" || params["id"] != "settings" {
		t.Errorf("Match(/users/settings/edit) = %q %v %v", d.Path, params, ok)
	}
}

func TestResolverLookup(t *testing.T) {
	qr := NewResolver(sampleRoutes())

	if d, ok := qr.Lookup("/users/:id"); !ok || d.Key != "[id]" {
		t.Errorf("Lookup(/users/:id) = %+v, %v", d, ok)
	}
	if d, ok := qr.Lookup("users/:id/edit/"); !ok || d.Key != "edit" {
		t.Errorf("Lookup(users/:id/edit/) = %+v, %v", d, ok)
	}
	if _, ok := qr.Lookup("/users/42"); ok {
		t.Error("Lookup should not match concrete URLs")
	}
}

func TestResolverKeys(t *testing.T) {
	qr := NewResolver(sampleRoutes())

	got := qr.Keys()
	want := []string{
		"",
		"developer",
		"developer/media.picture",
		"docs",
		"docs/*path",
		"users",
		"users/:id",
		"users/:id/edit",
		"users/new",
		"users/profile",
	}
	if !equalStrings(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestResolverZeroValue(t *testing.T) {
	var qr Resolver

	if _, ok := qr.GetRoute("users"); ok {
		t.Error("zero Resolver GetRoute should miss")
	}
	if _, _, ok := qr.Match("/"); ok {
		t.Error("zero Resolver Match should miss")
	}
	if qr.Keys() != nil || qr.Routes() != nil {
		t.Error("zero Resolver should have no routes")
	}
}

func TestResolverLoadConcurrent(t *testing.T) {
	qr := NewResolver(sampleRoutes())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			qr.Load(sampleRoutes())
		}()
		go func() {
			defer wg.Done()
			if _, ok := qr.GetRoute("users"); !ok {
				t.Error("GetRoute(users) missed during reload")
			}
		}()
	}
	wg.Wait()
}

func TestBuildNavs(t *testing.T) {
	navs := BuildNavs(sampleRoutes())

	if len(navs) != 2 {
		t.Fatalf("navs = %+v, want developer and users", navs)
	}

	dev := navs[0]
	if dev.Key != "developer" || dev.Title != "Developer" || dev.Path != "" {
		t.Errorf("developer nav = %+v", dev)
	}
	if len(dev.Items) != 1 || dev.Items[0].Title != "Media Picture" || dev.Items[0].Key != "developer/media.picture" {
		t.Errorf("developer items = %+v", dev.Items)
	}

	users := navs[1]
	if users.Path != "/users" || len(users.Items) != 2 {
		t.Errorf("users nav = %+v, want /users with new and profile", users)
	}
}

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"users":         "Users",
		"media.picture": "Media Picture",
		"user-settings": "User Settings",
		"api_keys":      "Api Keys",
		"":              "",
	}
	for in, want := range tests {
		if got := Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}
