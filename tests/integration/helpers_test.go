//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	valkeygo "github.com/valkey-io/valkey-go"

	"storyspoiler-e2e/internal/apiclient"
	"storyspoiler-e2e/internal/storyspoiler"
)

// doRequest sends an HTTP request and returns the response.
// Encodes body as JSON if non-nil.
// Sets Content-Type: application/json and Authorization: Bearer {authToken}
// if authToken is non-empty.
// Calls t.Fatal on transport errors.
func doRequest(
	t *testing.T,
	method, url string,
	body any,
	authToken string,
) *http.Response {
	t.Helper()

	var reqBody io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoErrorf(t, err,
			"doRequest: failed to marshal body for %s %s", method, url,
		)

		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoErrorf(t, err,
		"doRequest: failed to create request for %s %s", method, url,
	)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Do(req)
	require.NoErrorf(t, err,
		"doRequest: transport error for %s %s", method, url,
	)

	return resp
}

// readBody reads and closes the response body.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoErrorf(t, err,
		"readBody: failed to read response body (status %d)",
		resp.StatusCode,
	)

	return string(data)
}

// decodeEnvelope decodes a {msg} body. Closes the body and calls t.Fatal on
// decode errors.
func decodeEnvelope(t *testing.T, resp *http.Response) storyspoiler.Envelope {
	t.Helper()

	body := readBody(t, resp)

	var env storyspoiler.Envelope

	err := json.Unmarshal([]byte(body), &env)
	require.NoErrorf(t, err,
		"decodeEnvelope: failed to decode response body (status %d): %s",
		resp.StatusCode, body,
	)

	return env
}

// login calls POST /api/User/Authentication with the suite credentials.
// Returns the access token.
func login(t *testing.T) string {
	t.Helper()

	resp := doRequest(
		t,
		http.MethodPost,
		apiURL+storyspoiler.AuthenticationEndpoint,
		apiclient.Credentials{
			Username: suiteConfig.Username,
			Password: suiteConfig.Password,
		},
		"",
	)

	body := readBody(t, resp)

	require.Equalf(t, http.StatusOK, resp.StatusCode,
		"login: expected 200, got %d: %s", resp.StatusCode, body,
	)

	var token apiclient.Token
	require.NoError(t, json.Unmarshal([]byte(body), &token),
		"login: response is not JSON",
	)
	require.NotEmpty(t, token.AccessToken,
		"login: accessToken is empty",
	)

	return token.AccessToken
}

// createStory calls POST /api/Story/Create and returns the new story id and
// the raw body. Fails unless the status is 201.
func createStory(t *testing.T, token string, draft storyspoiler.StoryDraft) (string, string) {
	t.Helper()

	resp := doRequest(
		t,
		http.MethodPost,
		apiURL+storyspoiler.CreateEndpoint,
		draft,
		token,
	)

	body := readBody(t, resp)

	require.Equalf(t, http.StatusCreated, resp.StatusCode,
		"createStory: expected 201, got %d: %s", resp.StatusCode, body,
	)

	var created storyspoiler.CreateResponse
	require.NoError(t, json.Unmarshal([]byte(body), &created),
		"createStory: response is not JSON",
	)
	require.NotEmpty(t, created.StoryID,
		"createStory: storyId is empty",
	)

	return created.StoryID, body
}

// deleteStory calls DELETE /api/Story/Delete/{id}.
// Best-effort: does not call t.Fatal on failure, only t.Log.
func deleteStory(t *testing.T, storyID, token string) {
	t.Helper()

	if storyID == "" {
		return
	}

	resp := doRequest(
		t,
		http.MethodDelete,
		apiURL+storyspoiler.GetDeleteEndpoint(storyID),
		nil,
		token,
	)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Logf(
			"deleteStory: cleanup DELETE %s returned %d",
			storyspoiler.GetDeleteEndpoint(storyID),
			resp.StatusCode,
		)
	}
}

// newValkeyClient connects to the suite's Valkey. Skips the test when no
// Valkey is configured.
func newValkeyClient(t *testing.T) valkeygo.Client {
	t.Helper()

	if valkeyAddress == "" {
		t.Skip("no valkey configured (set STORYSPOILER_VALKEY_ADDRESS or INTEGRATION_TEST_MODE=docker)")
	}

	client, err := valkeygo.NewClient(valkeygo.ClientOption{
		InitAddress:  []string{valkeyAddress},
		DisableCache: true,
	})
	require.NoError(t, err, "failed to create Valkey client")
	t.Cleanup(client.Close)

	return client
}

// deleteKey removes key, ignoring errors.
func deleteKey(vc valkeygo.Client, key string) {
	_ = vc.Do(context.Background(), vc.B().Del().Key(key).Build()).Error()
}
