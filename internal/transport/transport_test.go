package transport

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/swiftfind/swiftfind/internal/apperr"
	"github.com/swiftfind/swiftfind/internal/model"
)

type fakeCore struct {
	results    []model.SearchItem
	searchErr  error
	launchErr  error
	rebuildErr error

	gotQuery    string
	gotLimit    int
	gotID       string
	gotPath     string
	gotUpserted []model.SearchItem
	rebuilt     bool
}

func (f *fakeCore) Search(query string, limit int) ([]model.SearchItem, error) {
	f.gotQuery, f.gotLimit = query, limit
	return f.results, f.searchErr
}

func (f *fakeCore) Launch(id, path string) error {
	f.gotID, f.gotPath = id, path
	return f.launchErr
}

func (f *fakeCore) Rebuild() (int, error) {
	f.rebuilt = true
	return 7, f.rebuildErr
}

func (f *fakeCore) UpsertItem(item model.SearchItem) error {
	f.gotUpserted = append(f.gotUpserted, item)
	return nil
}

func TestHandleJSONSearch(t *testing.T) {
	core := &fakeCore{results: []model.SearchItem{
		{ID: "app:code", Kind: model.KindApp, Title: "Visual Studio Code", Path: `C:\Code.exe`},
	}}

	raw := HandleJSON(core, []byte(`{"kind":"Search","payload":{"query":"code","limit":5}}`))

	if core.gotQuery != "code" || core.gotLimit != 5 {
		t.Errorf("core saw query=%q limit=%d", core.gotQuery, core.gotLimit)
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("response not json: %v", err)
	}
	if resp.Status != "ok" || resp.Response == nil || resp.Response.Kind != "Search" {
		t.Fatalf("response = %s", raw)
	}
	if !strings.Contains(string(raw), `"status":"ok"`) {
		t.Errorf("encoded = %s", raw)
	}
	if !strings.Contains(string(raw), `"id":"app:code"`) {
		t.Errorf("result row missing: %s", raw)
	}
}

func TestHandleJSONSearchOmittedLimit(t *testing.T) {
	core := &fakeCore{gotLimit: -1}
	HandleJSON(core, []byte(`{"kind":"Search","payload":{"query":"x"}}`))
	if core.gotLimit != 0 {
		t.Errorf("limit = %d, want 0 when omitted", core.gotLimit)
	}
}

func TestHandleJSONLaunch(t *testing.T) {
	core := &fakeCore{}
	raw := HandleJSON(core, []byte(`{"kind":"Launch","payload":{"id":"app:code"}}`))

	if core.gotID != "app:code" || core.gotPath != "" {
		t.Errorf("core saw id=%q path=%q", core.gotID, core.gotPath)
	}
	if !strings.Contains(string(raw), `"launched":true`) {
		t.Errorf("encoded = %s", raw)
	}
}

func TestHandleJSONRebuild(t *testing.T) {
	core := &fakeCore{}
	raw := HandleJSON(core, []byte(`{"kind":"Rebuild"}`))

	if !core.rebuilt {
		t.Error("core rebuild not called")
	}
	if !strings.Contains(string(raw), `"indexed":7`) {
		t.Errorf("encoded = %s", raw)
	}
}

func TestHandleJSONRebuildFailure(t *testing.T) {
	core := &fakeCore{rebuildErr: fmt.Errorf("%w: scan died", apperr.ErrProvider)}
	raw := HandleJSON(core, []byte(`{"kind":"Rebuild"}`))
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "err" || resp.Error.Code != CodeProvider {
		t.Errorf("response = %s", raw)
	}
}

func TestHandleJSONUpsert(t *testing.T) {
	core := &fakeCore{}
	raw := HandleJSON(core, []byte(`{"kind":"Upsert","payload":{"id":"app:x","kind":"app","title":"X","path":"C:\\X.exe"}}`))

	if len(core.gotUpserted) != 1 || core.gotUpserted[0].ID != "app:x" {
		t.Fatalf("upserted = %+v", core.gotUpserted)
	}
	if !strings.Contains(string(raw), `"upserted":true`) {
		t.Errorf("encoded = %s", raw)
	}
}

func TestHandleJSONUpsertRejectsMissingFields(t *testing.T) {
	core := &fakeCore{}
	raw := HandleJSON(core, []byte(`{"kind":"Upsert","payload":{"title":"no id"}}`))
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "err" || resp.Error.Code != CodeInvalidRequest {
		t.Errorf("response = %s", raw)
	}
	if len(core.gotUpserted) != 0 {
		t.Errorf("invalid item reached the core: %+v", core.gotUpserted)
	}
}

func TestHandleJSONInvalidJSON(t *testing.T) {
	raw := HandleJSON(&fakeCore{}, []byte(`{not-json`))
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "err" || resp.Error == nil || resp.Error.Code != CodeInvalidJSON {
		t.Errorf("response = %s", raw)
	}
}

func TestHandleJSONUnknownKind(t *testing.T) {
	raw := HandleJSON(&fakeCore{}, []byte(`{"kind":"Reboot","payload":{}}`))
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "err" || resp.Error.Code != CodeInvalidRequest {
		t.Errorf("response = %s", raw)
	}
}

func TestErrorCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("%w: empty id", apperr.ErrInvalidRequest), CodeInvalidRequest},
		{fmt.Errorf("%w: app:gone", apperr.ErrItemNotFound), CodeItemNotFound},
		{fmt.Errorf("%w: open refused", apperr.ErrLaunch), CodeLaunch},
		{fmt.Errorf("%w: db locked", apperr.ErrStore), CodeStore},
		{fmt.Errorf("%w: bad hotkey", apperr.ErrConfig), CodeConfig},
		{fmt.Errorf("%w: scan died", apperr.ErrProvider), CodeProvider},
		{fmt.Errorf("plain failure"), CodeStore},
	}
	for _, tc := range cases {
		core := &fakeCore{launchErr: tc.err}
		raw := HandleJSON(core, []byte(`{"kind":"Launch","payload":{"id":"x"}}`))
		var resp Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Status != "err" || resp.Error.Code != tc.code {
			t.Errorf("%v: code = %q, want %q", tc.err, resp.Error.Code, tc.code)
		}
	}
}

func TestHandleRequestWhitespaceLaunch(t *testing.T) {
	core := &fakeCore{launchErr: fmt.Errorf("%w: launch requires non-empty id or path", apperr.ErrInvalidRequest)}
	resp := HandleRequest(core, Request{Kind: "Launch", Payload: json.RawMessage(`{"id":"   "}`)})
	if resp.Status != "err" || resp.Error.Code != CodeInvalidRequest {
		t.Errorf("response = %+v", resp)
	}
}
