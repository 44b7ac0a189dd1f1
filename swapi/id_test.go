package swapi

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		url     string
		want    int
		wantErr bool
	}{
		{url: "https://host/api/people/42/", want: 42},
		{url: "https://host/api/people/42", want: 42},
		{url: "https://host/api/films/1///", want: 1},
		{url: "/api/planets/7/", want: 7},
		{url: "13", want: 13},
		{url: "https://host/api/people/", wantErr: true},
		{url: "https://host/api/people/abc/", wantErr: true},
		{url: "https://host/api/people/0/", wantErr: true},
		{url: "https://host/api/people/-3/", wantErr: true},
		{url: "", wantErr: true},
		{url: "///", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.url)
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedIdentifier) {
				t.Errorf("ParseID(%q) error = %v, want ErrMalformedIdentifier", tt.url, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseID(%q) = %d, %v; want %d", tt.url, got, err, tt.want)
		}
	}
}

func TestIDsFromURLs(t *testing.T) {
	got := IDsFromURLs([]string{
		"https://host/api/films/1/",
		"https://host/api/films/bogus/",
		"https://host/api/films/3/",
	})
	if want := []int{1, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDsFromURLs() = %v, want %v", got, want)
	}
}

func TestResources(t *testing.T) {
	want := []Resource{People, Films, Starships, Planets, Vehicles, Species}
	if got := Resources(); !reflect.DeepEqual(got, want) {
		t.Errorf("Resources() = %v, want %v", got, want)
	}

	if r, err := ParseResource("starships"); err != nil || r != Starships {
		t.Errorf("ParseResource(starships) = %v, %v", r, err)
	}
	if _, err := ParseResource("droids"); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("ParseResource(droids) error = %v, want ErrUnknownResource", err)
	}

	for _, r := range want {
		wantSearch := r == People || r == Starships || r == Planets
		if r.Searchable() != wantSearch {
			t.Errorf("%s.Searchable() = %v, want %v", r, r.Searchable(), wantSearch)
		}
	}
}

func TestUpstreamError(t *testing.T) {
	tests := []struct {
		err       *UpstreamError
		temporary bool
	}{
		{&UpstreamError{URL: "u", Status: 500}, true},
		{&UpstreamError{URL: "u", Status: 503}, true},
		{&UpstreamError{URL: "u", Status: 429}, true},
		{&UpstreamError{URL: "u", Status: 400}, false},
		{&UpstreamError{URL: "u", Err: errors.New("reset")}, true},
		{&UpstreamError{URL: "u", Err: context.Canceled}, false},
	}
	for _, tt := range tests {
		if got := tt.err.Temporary(); got != tt.temporary {
			t.Errorf("%v Temporary() = %v, want %v", tt.err, got, tt.temporary)
		}
		if !errors.Is(tt.err, ErrUpstream) {
			t.Errorf("%v does not match ErrUpstream", tt.err)
		}
	}

	inner := errors.New("dial failed")
	wrapped := &UpstreamError{URL: "u", Err: inner}
	if !errors.Is(wrapped, inner) {
		t.Error("UpstreamError does not unwrap to its cause")
	}
	if StatusOf(errors.New("other")) != 0 {
		t.Error("StatusOf(non-upstream) != 0")
	}
}

func TestGather(t *testing.T) {
	var inFlight, peak atomic.Int32
	fail := errors.New("fail")

	outcomes := Gather(context.Background(), 6, 2, func(ctx context.Context, i int) (int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		// Later indexes finish first.
		time.Sleep(time.Duration(6-i) * 3 * time.Millisecond)
		inFlight.Add(-1)
		if i == 2 {
			return 0, fail
		}
		return i * 10, nil
	})

	if len(outcomes) != 6 {
		t.Fatalf("len(outcomes) = %d, want 6", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Index != i {
			t.Errorf("outcomes[%d].Index = %d", i, o.Index)
		}
	}
	if !errors.Is(outcomes[2].Err, fail) {
		t.Errorf("outcomes[2].Err = %v, want fail", outcomes[2].Err)
	}
	if got, want := Successes(outcomes), []int{0, 10, 30, 40, 50}; !reflect.DeepEqual(got, want) {
		t.Errorf("Successes() = %v, want %v", got, want)
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestGather_Empty(t *testing.T) {
	outcomes := Gather(context.Background(), 0, 4, func(context.Context, int) (string, error) {
		t.Fatal("fn called for n = 0")
		return "", nil
	})
	if len(outcomes) != 0 {
		t.Errorf("len(outcomes) = %d, want 0", len(outcomes))
	}
}
