package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nimbushost/NimbusPanel/internal/pkg/env"
)

const defaultProviderAPIBaseURL = "https://api.cloudprovider.example/v2"

// HTTPGateway talks to the compute provider REST API.
type HTTPGateway struct {
	APIBaseURL string
	APIToken   string

	HTTPClient *http.Client
}

func NewHTTPGatewayFromEnv() (*HTTPGateway, error) {
	token := strings.TrimSpace(env.GetEnv("PROVIDER_API_TOKEN", ""))
	if token == "" {
		return nil, errors.New("PROVIDER_API_TOKEN is not configured")
	}

	return &HTTPGateway{
		APIBaseURL: strings.TrimRight(env.GetEnv("PROVIDER_API_BASE_URL", defaultProviderAPIBaseURL), "/"),
		APIToken:   token,
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}, nil
}

type createInstanceRequest struct {
	Plan   string `json:"plan"`
	Label  string `json:"label"`
	Region string `json:"region"`
	OSID   string `json:"os_id,omitempty"`
}

type createInstanceResponse struct {
	Instance struct {
		ID string `json:"id"`
	} `json:"instance"`
}

type instanceStatusResponse struct {
	Instance struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		MainIP     string `json:"main_ip"`
		DefaultSSH struct {
			User     string `json:"user"`
			Password string `json:"password"`
		} `json:"default_ssh"`
	} `json:"instance"`
}

func (g *HTTPGateway) Create(ctx context.Context, spec InstanceSpec) (string, error) {
	if strings.TrimSpace(spec.PlanSpec) == "" {
		return "", errors.New("instance plan spec is required")
	}

	payload, err := json.Marshal(createInstanceRequest{
		Plan:   spec.PlanSpec,
		Label:  spec.Label,
		Region: spec.Region,
		OSID:   strings.TrimSpace(env.GetEnv("PROVIDER_OS_ID", "")),
	})
	if err != nil {
		return "", err
	}

	body, status, err := g.do(ctx, http.MethodPost, "/instances", payload)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", classify("create", status, body)
	}

	var out createInstanceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Instance.ID) == "" {
		return "", errors.New("provider create response missing instance id")
	}
	return strings.TrimSpace(out.Instance.ID), nil
}

func (g *HTTPGateway) FetchStatus(ctx context.Context, instanceID string) (*InstanceStatus, error) {
	if strings.TrimSpace(instanceID) == "" {
		return nil, errors.New("instance id is required")
	}

	body, status, err := g.do(ctx, http.MethodGet, "/instances/"+instanceID, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, classify("status", status, body)
	}

	var out instanceStatusResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	ready := strings.EqualFold(strings.TrimSpace(out.Instance.Status), "active") &&
		strings.TrimSpace(out.Instance.MainIP) != "" &&
		out.Instance.MainIP != "0.0.0.0"
	st := &InstanceStatus{Ready: ready}
	if ready {
		st.IPAddress = strings.TrimSpace(out.Instance.MainIP)
		st.Username = strings.TrimSpace(out.Instance.DefaultSSH.User)
		if st.Username == "" {
			st.Username = "root"
		}
		st.Password = out.Instance.DefaultSSH.Password
	}
	return st, nil
}

func (g *HTTPGateway) Delete(ctx context.Context, instanceID string) (bool, error) {
	if strings.TrimSpace(instanceID) == "" {
		return false, errors.New("instance id is required")
	}

	body, status, err := g.do(ctx, http.MethodDelete, "/instances/"+instanceID, nil)
	if err != nil {
		return false, err
	}
	switch {
	case status == http.StatusNotFound, status == http.StatusGone:
		// Already gone counts as a successful teardown.
		return false, nil
	case status < 200 || status >= 300:
		return false, classify("delete", status, body)
	}
	return true, nil
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.APIBaseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+g.APIToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return body, resp.StatusCode, nil
}

func classify(op string, status int, body []byte) error {
	transient := status >= 500 || status == http.StatusTooManyRequests
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return &ProviderError{Op: op, Status: status, Transient: transient, Message: msg}
}
