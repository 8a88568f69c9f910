package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docchat/internal/config"
	db "docchat/internal/core/database"
	"docchat/internal/core/extract"
	"docchat/internal/core/session"
	"docchat/internal/models"
)

type recordingLLM struct {
	prompts []string
	reply   string
	err     error
}

func (f *recordingLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestServer(t *testing.T, llm *recordingLLM) (*httptest.Server, *db.MemoryClient) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret: "test-secret",
		WebDir:    t.TempDir(),
		Port:      "0",
	}
	store := db.NewMemoryClient()
	srv := NewServer(cfg, store, llm, extract.NewFileExtractor(), session.NewStore())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func postJSON(t *testing.T, url, token string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// twoPagePDF builds a well-formed PDF whose first page reads "Hello" and
// whose second page has an empty text layer.
func twoPagePDF() []byte {
	pages := []string{"Hello", ""}
	var buf bytes.Buffer
	var offsets []int
	buf.WriteString("%PDF-1.4\n")
	addObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	addObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), len(pages)))
	addObj("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")
	for i, text := range pages {
		pageNum := 4 + 2*i
		contentNum := pageNum + 1
		addObj(fmt.Sprintf(
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>\nendobj\n",
			pageNum, contentNum))
		var content string
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		addObj(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			contentNum, len(content), content))
	}
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)
	return buf.Bytes()
}

func uploadFile(t *testing.T, url, token, filename string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func TestEndToEndRegisterLoginUploadAsk(t *testing.T) {
	llm := &recordingLLM{reply: "It says hello."}
	ts, store := newTestServer(t, llm)

	creds := map[string]string{"username": "alice", "password": "pw123"}

	// Register.
	resp := postJSON(t, ts.URL+"/api/signup", "", creds)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup expected 201, got %d", resp.StatusCode)
	}

	// Duplicate registration is rejected.
	resp = postJSON(t, ts.URL+"/api/signup", "", creds)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup expected 409, got %d", resp.StatusCode)
	}

	// Wrong password is rejected with the generic message.
	resp = postJSON(t, ts.URL+"/api/login", "", map[string]string{"username": "alice", "password": "wrongpw"})
	msg, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password expected 401, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(msg), "invalid username or password") {
		t.Fatalf("unexpected login failure message: %q", msg)
	}

	// Login.
	resp = postJSON(t, ts.URL+"/api/login", "", creds)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login expected 200, got %d", resp.StatusCode)
	}
	var loginBody struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	decodeBody(t, resp, &loginBody)
	if loginBody.Token == "" {
		t.Fatal("login returned an empty token")
	}

	// Upload a 2-page PDF with pages "Hello" and "".
	resp = uploadFile(t, ts.URL+"/api/documents/upload", loginBody.Token, "doc.pdf", twoPagePDF())
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("upload expected 200, got %d: %s", resp.StatusCode, body)
	}
	var uploadBody struct {
		FileName string `json:"file_name"`
		Chars    int    `json:"chars"`
	}
	decodeBody(t, resp, &uploadBody)
	if uploadBody.Chars == 0 {
		t.Fatal("upload extracted no text")
	}

	// Ask a question.
	resp = postJSON(t, ts.URL+"/api/chat/ask", loginBody.Token, map[string]string{"question": "What does it say?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ask expected 200, got %d", resp.StatusCode)
	}
	var askBody struct {
		Answer string `json:"answer"`
		Status string `json:"status"`
	}
	decodeBody(t, resp, &askBody)
	if askBody.Answer != "It says hello." {
		t.Fatalf("unexpected answer: %q", askBody.Answer)
	}
	if askBody.Status != "answer" {
		t.Fatalf("unexpected status: %q", askBody.Status)
	}

	// The composed prompt embeds the document text and the question.
	if len(llm.prompts) != 1 {
		t.Fatalf("expected one model call, got %d", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], "Hello") || !strings.Contains(llm.prompts[0], "What does it say?") {
		t.Fatalf("prompt missing document or question: %q", llm.prompts[0])
	}

	// Both turns landed in chat history, user then assistant.
	history, err := store.HistoryByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
	if history[0].Role != models.RoleUser || history[1].Role != models.RoleAssistant {
		t.Fatalf("unexpected roles: %s, %s", history[0].Role, history[1].Role)
	}
}

func TestAskWithoutDocumentReturnsSentinel(t *testing.T) {
	llm := &recordingLLM{reply: "should not be called"}
	ts, _ := newTestServer(t, llm)

	resp := postJSON(t, ts.URL+"/api/signup", "", map[string]string{"username": "bob", "password": "pw"})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/login", "", map[string]string{"username": "bob", "password": "pw"})
	var loginBody struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &loginBody)

	resp = postJSON(t, ts.URL+"/api/chat/ask", loginBody.Token, map[string]string{"question": "anything?"})
	var askBody struct {
		Answer string `json:"answer"`
		Status string `json:"status"`
	}
	decodeBody(t, resp, &askBody)

	if askBody.Status != "no_document" {
		t.Fatalf("expected no_document status, got %q", askBody.Status)
	}
	if len(llm.prompts) != 0 {
		t.Fatalf("model must not be called without a document, got %d calls", len(llm.prompts))
	}
}

func TestUploadMalformedPDFLeavesDocumentUnset(t *testing.T) {
	llm := &recordingLLM{reply: "irrelevant"}
	ts, _ := newTestServer(t, llm)

	resp := postJSON(t, ts.URL+"/api/signup", "", map[string]string{"username": "carol", "password": "pw"})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/login", "", map[string]string{"username": "carol", "password": "pw"})
	var loginBody struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &loginBody)

	resp = uploadFile(t, ts.URL+"/api/documents/upload", loginBody.Token, "junk.pdf", []byte("not a pdf at all"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed upload expected 400, got %d", resp.StatusCode)
	}

	// A question after the failed upload still hits the no-document path.
	resp = postJSON(t, ts.URL+"/api/chat/ask", loginBody.Token, map[string]string{"question": "q"})
	var askBody struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &askBody)
	if askBody.Status != "no_document" {
		t.Fatalf("expected no_document after failed upload, got %q", askBody.Status)
	}
}

func TestLogoutInvalidatesSessionAndDropsDocument(t *testing.T) {
	llm := &recordingLLM{reply: "answer"}
	ts, _ := newTestServer(t, llm)

	resp := postJSON(t, ts.URL+"/api/signup", "", map[string]string{"username": "dave", "password": "pw"})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/login", "", map[string]string{"username": "dave", "password": "pw"})
	var loginBody struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &loginBody)

	resp = uploadFile(t, ts.URL+"/api/documents/upload", loginBody.Token, "doc.pdf", twoPagePDF())
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload expected 200, got %d", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/logout", loginBody.Token, struct{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout expected 204, got %d", resp.StatusCode)
	}

	// The token is signed but its session is gone.
	resp = postJSON(t, ts.URL+"/api/chat/ask", loginBody.Token, map[string]string{"question": "q"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("ask after logout expected 401, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts, _ := newTestServer(t, &recordingLLM{})

	resp, err := http.Get(ts.URL + "/api/chat/history")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token expected 401, got %d", resp.StatusCode)
	}
}
