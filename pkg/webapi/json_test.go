package webapi

import (
	"context"
	"errors"
	"testing"
)

func TestGetJSONData(t *testing.T) {
	body := `{"result":{"status":1,"items":[1,2]}}`
	c := newTestClient(t, &stubTransport{resp: &stubResponse{status: 200, body: body}}, true)

	result, err := c.GetJSONData(context.Background(), "interface", "method", 2, NewParams("test", "param"))
	if err != nil {
		t.Fatalf("GetJSONData: %v", err)
	}
	if result.Raw != `{"status":1,"items":[1,2]}` {
		t.Fatalf("result = %s", result.Raw)
	}
	if result.Get("items.#").Int() != 2 {
		t.Fatalf("items not accessible: %s", result.Raw)
	}
}

func TestGetJSONDataFailed(t *testing.T) {
	body := `{"result":{"status":0,"statusDetail":"Error"}}`
	c := newTestClient(t, &stubTransport{resp: &stubResponse{status: 200, body: body}}, true)

	_, err := c.GetJSONData(context.Background(), "interface", "method", 2, nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.Status != 0 || statusErr.Detail != "Error" {
		t.Fatalf("unexpected error %+v", statusErr)
	}
	if err.Error() != "The Web API request failed with the following error: Error (status code: 0)." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestGetJSONDataStringStatus(t *testing.T) {
	body := `{"result":{"status":"1","items":[]}}`
	c := newTestClient(t, &stubTransport{resp: &stubResponse{status: 200, body: body}}, true)

	result, err := c.GetJSONData(context.Background(), "i", "m", 1, nil)
	if err != nil {
		t.Fatalf("GetJSONData: %v", err)
	}
	if result.Raw != `{"status":"1","items":[]}` {
		t.Fatalf("result = %s", result.Raw)
	}

	body = `{"result":{"status":"0","statusDetail":"Denied"}}`
	c = newTestClient(t, &stubTransport{resp: &stubResponse{status: 200, body: body}}, true)
	_, err = c.GetJSONData(context.Background(), "i", "m", 1, nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.Status != 0 || statusErr.Detail != "Denied" {
		t.Fatalf("unexpected error %+v", statusErr)
	}
}

func TestGetJSONDataMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `<html></html>`,
		"missing result": `{"response":{}}`,
		"result scalar":  `{"result":1}`,
		"missing status": `{"result":{}}`,
		"word status":    `{"result":{"status":"ok"}}`,
		"bool status":    `{"result":{"status":true}}`,
		"missing detail": `{"result":{"status":2}}`,
		"truncated":      `{"result":{"status":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, &stubTransport{resp: &stubResponse{status: 200, body: body}}, true)
			_, err := c.GetJSONData(context.Background(), "i", "m", 1, nil)
			var malformed *MalformedJSONError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected *MalformedJSONError, got %v", err)
			}
		})
	}
}

func TestGetJSONDataPropagatesLoadErrors(t *testing.T) {
	c := newTestClient(t, &stubTransport{resp: &stubResponse{status: 401}}, true)
	if _, err := c.GetJSONData(context.Background(), "i", "m", 1, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestInterfaces(t *testing.T) {
	body := `{"apilist":{"interfaces":[{"name":"ISteamUser","methods":[{"name":"GetPlayerSummaries","version":2}]},{"name":"ISteamNews","methods":[]}]}}`
	transport := &stubTransport{resp: &stubResponse{status: 200, body: body}}
	c := newTestClient(t, transport, true)

	interfaces, err := c.Interfaces(context.Background())
	if err != nil {
		t.Fatalf("Interfaces: %v", err)
	}
	if n := len(interfaces.Array()); n != 2 {
		t.Fatalf("expected 2 interfaces, got %d", n)
	}
	if got := interfaces.Get("0.methods.0.name").String(); got != "GetPlayerSummaries" {
		t.Fatalf("unexpected method %q", got)
	}
	want := "https://api.steampowered.com/ISteamWebAPIUtil/GetSupportedAPIList/v0001/?format=json&key=" + testKey
	if transport.urls[0] != want {
		t.Fatalf("requested %s", transport.urls[0])
	}
}

func TestInterfacesMalformed(t *testing.T) {
	c := newTestClient(t, &stubTransport{resp: &stubResponse{status: 200, body: `{"apilist":{}}`}}, true)
	var malformed *MalformedJSONError
	if _, err := c.Interfaces(context.Background()); !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedJSONError, got %v", err)
	}
}
