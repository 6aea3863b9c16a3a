package soap

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tclock-go/internal/config"
	"tclock-go/internal/tclock"
)

// capturedRequest holds what the fake service saw on the last call.
type capturedRequest struct {
	method     string
	path       string
	soapAction string
	body       string
}

// newTestServer runs a fake service that captures the request and
// answers with respond(r).
func newTestServer(t *testing.T, respond func(r *capturedRequest) (int, string)) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.soapAction = r.Header.Get("SOAPAction")
		captured.body = string(body)

		status, resp := respond(captured)
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(status)
		io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestClient(endpoint string) *Client {
	return NewClient(config.SoapConfig{
		Endpoint: endpoint,
		Username: "kiosk-user",
		Password: "kiosk-pass",
		ClientID: 77,
	}, tclock.NewNopLogger())
}

func swipeResponseXML(operation, inner string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <%[1]sResponse xmlns="http://msiwebtrax.com/">
      <%[1]sResult>
%s
      </%[1]sResult>
    </%[1]sResponse>
  </soap:Body>
</soap:Envelope>`, operation, inner)
}

func TestClient_RecordSwipe(t *testing.T) {
	srv, captured := newTestServer(t, func(*capturedRequest) (int, string) {
		return http.StatusOK, swipeResponseXML("RecordSwipeSummary", `
        <RecordSwipeReturnInfo>
          <PunchSuccess>true</PunchSuccess>
          <PunchType>checkin</PunchType>
          <FirstName>Maria</FirstName>
          <LastName>Lopez</LastName>
          <PunchException />
          <SystemErrorCode />
        </RecordSwipeReturnInfo>
        <CurrentWeeklyHours>32.5</CurrentWeeklyHours>`)
	})

	c := newTestClient(srv.URL)
	resp, err := c.RecordSwipe(context.Background(), "12345|*|2024-01-15T10:30:00")
	if err != nil {
		t.Fatalf("RecordSwipe() error = %v", err)
	}

	if captured.method != http.MethodPost {
		t.Errorf("method = %s, want POST", captured.method)
	}
	if captured.path != "/Services/MSIWebTraxCheckInSummary.asmx" {
		t.Errorf("path = %s", captured.path)
	}
	if captured.soapAction != "http://msiwebtrax.com/RecordSwipeSummary" {
		t.Errorf("SOAPAction = %s", captured.soapAction)
	}
	for _, fragment := range []string{
		"<UserName>kiosk-user</UserName>",
		"<PWD>kiosk-pass</PWD>",
		"<swipeInput>12345|*|2024-01-15T10:30:00</swipeInput>",
		"<RecordSwipeSummary xmlns=\"http://msiwebtrax.com/\">",
	} {
		if !strings.Contains(captured.body, fragment) {
			t.Errorf("request body missing %s:\n%s", fragment, captured.body)
		}
	}

	if !resp.PunchSuccess || resp.PunchType != "checkin" {
		t.Errorf("resp = %+v, want successful checkin", resp)
	}
	if resp.FirstName != "Maria" || resp.LastName != "Lopez" {
		t.Errorf("name = %q %q", resp.FirstName, resp.LastName)
	}
	if resp.PunchException != nil || resp.SystemErrorCode != nil {
		t.Errorf("empty code elements decoded as codes: %+v", resp)
	}
	if resp.WeeklyHours == nil || *resp.WeeklyHours != 32.5 {
		t.Errorf("WeeklyHours = %v, want 32.5", resp.WeeklyHours)
	}
}

func TestClient_RecordSwipe_punchException(t *testing.T) {
	srv, _ := newTestServer(t, func(*capturedRequest) (int, string) {
		return http.StatusOK, swipeResponseXML("RecordSwipeSummary", `
        <RecordSwipeReturnInfo>
          <PunchSuccess>false</PunchSuccess>
          <PunchException>2</PunchException>
          <SystemErrorCode />
        </RecordSwipeReturnInfo>`)
	})

	c := newTestClient(srv.URL)
	resp, err := c.RecordSwipe(context.Background(), "12345|*|2024-01-15T10:30:00")
	if err != nil {
		t.Fatalf("RecordSwipe() error = %v", err)
	}
	if resp.PunchException == nil || *resp.PunchException != 2 {
		t.Errorf("PunchException = %v, want 2", resp.PunchException)
	}
	if resp.WeeklyHours != nil {
		t.Errorf("WeeklyHours = %v, want nil when absent", resp.WeeklyHours)
	}
}

func TestClient_RecordSwipeDepartmentOverride(t *testing.T) {
	srv, captured := newTestServer(t, func(*capturedRequest) (int, string) {
		return http.StatusOK, swipeResponseXML("RecordSwipeSummaryDepartmentOverride", `
        <RecordSwipeReturnInfo>
          <PunchSuccess>true</PunchSuccess>
          <PunchType>checkout</PunchType>
          <FirstName>Jo</FirstName>
          <LastName>Park</LastName>
        </RecordSwipeReturnInfo>`)
	})

	c := newTestClient(srv.URL)
	resp, err := c.RecordSwipeDepartmentOverride(context.Background(), "12345|*|2024-01-15T10:30:00|*|7")
	if err != nil {
		t.Fatalf("RecordSwipeDepartmentOverride() error = %v", err)
	}

	if captured.soapAction != "http://msiwebtrax.com/RecordSwipeSummaryDepartmentOverride" {
		t.Errorf("SOAPAction = %s", captured.soapAction)
	}
	if !strings.Contains(captured.body, "<RecordSwipeSummaryDepartmentOverride xmlns=") {
		t.Errorf("request body missing override operation element:\n%s", captured.body)
	}
	// The differently-named response element decodes through the same
	// envelope types.
	if resp.PunchType != "checkout" || resp.FirstName != "Jo" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestClient_call_soapFault(t *testing.T) {
	srv, _ := newTestServer(t, func(*capturedRequest) (int, string) {
		return http.StatusInternalServerError, `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>Server was unable to process request.</faultstring>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`
	})

	c := newTestClient(srv.URL)
	_, err := c.RecordSwipe(context.Background(), "12345|*|2024-01-15T10:30:00")
	if err == nil {
		t.Fatal("RecordSwipe() error = nil, want fault error")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error = %v, want status 500 mention", err)
	}
}

func TestClient_SaveImage(t *testing.T) {
	srv, captured := newTestServer(t, func(*capturedRequest) (int, string) {
		return http.StatusOK, `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <SaveImageResponse xmlns="http://msiwebtrax.com/">
      <SaveImageResult>
        <SystemErrorCode />
      </SaveImageResult>
    </SaveImageResponse>
  </soap:Body>
</soap:Envelope>`
	})

	c := newTestClient(srv.URL)
	photoData := []byte("jpeg bytes")
	if err := c.SaveImage(context.Background(), "12345__20240115_103000.jpg", photoData); err != nil {
		t.Fatalf("SaveImage() error = %v", err)
	}

	if captured.path != "/Services/MSIWebTraxCheckIn.asmx" {
		t.Errorf("path = %s", captured.path)
	}
	if captured.soapAction != "http://msiwebtrax.com/SaveImage" {
		t.Errorf("SOAPAction = %s", captured.soapAction)
	}
	wantData := base64.StdEncoding.EncodeToString(photoData)
	for _, fragment := range []string{
		"<fileName>12345__20240115_103000.jpg</fileName>",
		"<data>" + wantData + "</data>",
		"<dir>77</dir>",
	} {
		if !strings.Contains(captured.body, fragment) {
			t.Errorf("request body missing %s:\n%s", fragment, captured.body)
		}
	}
}

func TestClient_SaveImage_systemError(t *testing.T) {
	srv, _ := newTestServer(t, func(*capturedRequest) (int, string) {
		return http.StatusOK, `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <SaveImageResponse xmlns="http://msiwebtrax.com/">
      <SaveImageResult>
        <SystemErrorCode>-3</SystemErrorCode>
      </SaveImageResult>
    </SaveImageResponse>
  </soap:Body>
</soap:Envelope>`
	})

	c := newTestClient(srv.URL)
	err := c.SaveImage(context.Background(), "x.jpg", []byte("jpeg"))
	if err == nil {
		t.Fatal("SaveImage() error = nil, want system error")
	}
	if !strings.Contains(err.Error(), "-3") {
		t.Errorf("error = %v, want code -3 mention", err)
	}
}

func TestClient_Probe(t *testing.T) {
	t.Run("both services expose their operations", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "WSDL" {
				t.Errorf("query = %q, want WSDL", r.URL.RawQuery)
			}
			switch r.URL.Path {
			case "/Services/MSIWebTraxCheckInSummary.asmx":
				io.WriteString(w, `<wsdl:definitions><wsdl:operation name="RecordSwipeSummary"/></wsdl:definitions>`)
			case "/Services/MSIWebTraxCheckIn.asmx":
				io.WriteString(w, `<wsdl:definitions><wsdl:operation name="RecordSwipe"/></wsdl:definitions>`)
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		if err := c.Probe(context.Background()); err != nil {
			t.Errorf("Probe() error = %v", err)
		}
	})

	t.Run("missing operation fails the probe", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `<wsdl:definitions><wsdl:operation name="RecordSwipe"/></wsdl:definitions>`)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		err := c.Probe(context.Background())
		if err == nil {
			t.Fatal("Probe() error = nil, want missing operation error")
		}
		if !strings.Contains(err.Error(), "RecordSwipeSummary") {
			t.Errorf("error = %v, want RecordSwipeSummary named", err)
		}
	})

	t.Run("unreachable service fails the probe", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		if err := c.Probe(context.Background()); err == nil {
			t.Error("Probe() error = nil, want status error")
		}
	})
}

func TestClient_trailingSlashEndpoint(t *testing.T) {
	srv, captured := newTestServer(t, func(*capturedRequest) (int, string) {
		return http.StatusOK, swipeResponseXML("RecordSwipeSummary", `
        <RecordSwipeReturnInfo>
          <PunchSuccess>true</PunchSuccess>
        </RecordSwipeReturnInfo>`)
	})

	c := newTestClient(srv.URL + "/")
	if _, err := c.RecordSwipe(context.Background(), "1|*|2024-01-15T10:30:00"); err != nil {
		t.Fatalf("RecordSwipe() error = %v", err)
	}
	if captured.path != "/Services/MSIWebTraxCheckInSummary.asmx" {
		t.Errorf("path = %s, want no doubled slash", captured.path)
	}
}

func TestParseOptionalCode(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name string
		raw  *string
		want *int
	}{
		{"nil element", nil, nil},
		{"empty element", strPtr(""), nil},
		{"whitespace", strPtr("  "), nil},
		{"zero means absent", strPtr("0"), nil},
		{"positive code", strPtr("2"), intPtr(2)},
		{"negative code", strPtr("-3"), intPtr(-3)},
		{"garbage", strPtr("abc"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseOptionalCode(tt.raw)
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Errorf("parseOptionalCode() = %v, want %v", got, tt.want)
			case *got != *tt.want:
				t.Errorf("parseOptionalCode() = %d, want %d", *got, *tt.want)
			}
		})
	}
}

func intPtr(i int) *int { return &i }
