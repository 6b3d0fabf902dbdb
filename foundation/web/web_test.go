package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/ardanlabs/ledger/foundation/web"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type payload struct {
	To     string  `json:"to" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

func Test_Routing(t *testing.T) {
	var order []string
	mw := func(name string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return handler(ctx, w, r)
			}
		}
	}

	app := web.NewApp(make(chan os.Signal, 1), mw("app"))

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		v, err := web.GetValues(ctx)
		if err != nil {
			return err
		}

		resp := struct {
			From    string `json:"from"`
			To      string `json:"to"`
			TraceID string `json:"trace_id"`
		}{
			From:    web.Param(r, "from"),
			To:      web.Param(r, "to"),
			TraceID: v.TraceID,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
	app.Handle(http.MethodGet, "v1", "/blocks/list/:from/:to", h, mw("route"))

	t.Log("Given the need to route requests through middleware.")
	{
		r := httptest.NewRequest(http.MethodGet, "/v1/blocks/list/1/5", nil)
		w := httptest.NewRecorder()
		app.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould get a 200, got %d.", failed, w.Code)
		}

		var resp struct {
			From    string `json:"from"`
			To      string `json:"to"`
			TraceID string `json:"trace_id"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("\t%s\tShould decode the response: %s", failed, err)
		}

		if resp.From != "1" || resp.To != "5" || resp.TraceID == "" {
			t.Fatalf("\t%s\tShould see the params and trace id, got %+v.", failed, resp)
		}
		t.Logf("\t%s\tShould see the params and trace id.", success)

		if strings.Join(order, ",") != "app,route" {
			t.Fatalf("\t%s\tShould run app middleware first, got %v.", failed, order)
		}
		t.Logf("\t%s\tShould run app middleware first.", success)
	}
}

func Test_Decode(t *testing.T) {
	t.Log("Given the need to decode and validate payloads.")
	{
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"to":"B","amount":2.5}`))
		if err := web.Decode(r, &p); err != nil {
			t.Fatalf("\t%s\tShould decode a valid payload: %s", failed, err)
		}
		if p.To != "B" || p.Amount != 2.5 {
			t.Fatalf("\t%s\tShould get the payload values, got %+v.", failed, p)
		}
		t.Logf("\t%s\tShould decode a valid payload.", success)

		r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"to":"B","amount":0}`))
		if err := web.Decode(r, &p); !validate.IsFieldErrors(err) {
			t.Fatalf("\t%s\tShould get field errors, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould reject a zero amount.", success)

		r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"to":"B","tip":1}`))
		if err := web.Decode(r, &p); err == nil || validate.IsFieldErrors(err) {
			t.Fatalf("\t%s\tShould reject unknown fields, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould reject unknown fields.", success)
	}
}

func Test_ShutdownError(t *testing.T) {
	err := web.NewShutdownError("integrity issue")
	if !web.IsShutdown(err) {
		t.Fatalf("\t%s\tShould detect a shutdown error.", failed)
	}
	if web.IsShutdown(errors.New("other")) {
		t.Fatalf("\t%s\tShould not detect a regular error.", failed)
	}
	t.Logf("\t%s\tShould detect shutdown errors.", success)
}

func Test_SignalShutdown(t *testing.T) {
	tt := []struct {
		name     string
		err      error
		shutdown bool
	}{
		{"none", nil, false},
		{"client", errors.New("write: broken pipe"), false},
		{"integrity", web.NewShutdownError("integrity issue"), true},
	}

	t.Log("Given the need to only stop the service on integrity issues.")
	{
		for testID, test := range tt {
			tf := func(t *testing.T) {
				shutdown := make(chan os.Signal, 1)
				app := web.NewApp(shutdown)

				h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
					return test.err
				}
				app.Handle(http.MethodGet, "", "/test", h)

				r := httptest.NewRequest(http.MethodGet, "/test", nil)
				app.ServeHTTP(httptest.NewRecorder(), r)

				var got bool
				select {
				case <-shutdown:
					got = true
				default:
				}

				if got != test.shutdown {
					t.Fatalf("\t%s\tTest %d:\tShould signal shutdown %t, got %t.", failed, testID, test.shutdown, got)
				}
				t.Logf("\t%s\tTest %d:\tShould signal shutdown %t.", success, testID, test.shutdown)
			}

			t.Run(test.name, tf)
		}
	}
}
