package acceptance

import (
	"encoding/json"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"strings"
)

// fakeCapabilityServer stands in for an OpenAI-compatible embeddings and
// chat-completions endpoint. Acceptance scenarios drive a real, built
// mnemos binary end to end, so remember_facts needs something reachable
// over MNEMOS_EMBED_URL/MNEMOS_LLM_URL instead of the in-process fakes
// the engine's own unit tests use. Responses are scripted per scenario
// so the extraction/classification/similarity math in the engine runs
// for real against known inputs.
type fakeCapabilityServer struct {
	srv *httptest.Server

	embeddings  []embedFixture
	extractions []extractFixture
	verdicts    []verdictFixture
}

type embedFixture struct {
	contains string
	vector   []float32
}

type extractFixture struct {
	contains string
	facts    []fakeFact
}

type verdictFixture struct {
	contains string
	verdict  string
}

type fakeFact struct {
	Fact      string  `json:"fact"`
	Intensity float64 `json:"intensity"`
}

func newFakeCapabilityServer() *fakeCapabilityServer {
	f := &fakeCapabilityServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/embeddings", f.handleEmbeddings)
	mux.HandleFunc("/chat/completions", f.handleChatCompletions)
	f.srv = httptest.NewServer(mux)
	return f
}

func (f *fakeCapabilityServer) embedURL() string { return f.srv.URL + "/embeddings" }
func (f *fakeCapabilityServer) llmURL() string    { return f.srv.URL + "/chat/completions" }
func (f *fakeCapabilityServer) close()            { f.srv.Close() }

func (f *fakeCapabilityServer) withEmbedding(contains string, vector []float32) *fakeCapabilityServer {
	f.embeddings = append(f.embeddings, embedFixture{contains: contains, vector: vector})
	return f
}

func (f *fakeCapabilityServer) withExtraction(contains string, facts ...fakeFact) *fakeCapabilityServer {
	f.extractions = append(f.extractions, extractFixture{contains: contains, facts: facts})
	return f
}

func (f *fakeCapabilityServer) withVerdict(contains, verdict string) *fakeCapabilityServer {
	f.verdicts = append(f.verdicts, verdictFixture{contains: contains, verdict: verdict})
	return f
}

func (f *fakeCapabilityServer) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Input string `json:"input"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	vec := f.vectorFor(body.Input)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data": []map[string]interface{}{
			{"embedding": vec, "index": 0},
		},
	})
}

func (f *fakeCapabilityServer) vectorFor(text string) []float32 {
	for _, fx := range f.embeddings {
		if strings.Contains(text, fx.contains) {
			return fx.vector
		}
	}
	return hashVector(text)
}

// hashVector derives a deterministic 8-dimensional vector from arbitrary
// text, the same spirit as capability.LocalEmbedder's own hash-based
// fallback, so unscripted content still embeds to something reproducible.
// Every component is non-negative, so two unrelated texts usually score
// a cosine around 0.6-0.9 and can land inside the 0.78-0.93 band.
func hashVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	vec := make([]float32, 8)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed>>40)%1000) / 1000
	}
	return vec
}

func (f *fakeCapabilityServer) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	var system, user string
	for _, m := range body.Messages {
		switch m.Role {
		case "system":
			system = m.Content
		case "user":
			user = m.Content
		}
	}

	var content string
	switch {
	case strings.Contains(system, "fact extraction engine"):
		content = f.extractionResponse(user)
	case strings.Contains(system, "conflict classifier"):
		content = f.classificationResponse(user)
	default:
		content = "[]"
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	})
}

func (f *fakeCapabilityServer) extractionResponse(text string) string {
	for _, fx := range f.extractions {
		if strings.Contains(text, fx.contains) {
			data, _ := json.Marshal(fx.facts)
			return string(data)
		}
	}
	return "[]"
}

// classificationResponse implements classifyConflict's "NEW: ...\nEXISTING: ..."
// contract; scenarios key their expected verdict off a substring of that
// combined text (usually the new fact).
func (f *fakeCapabilityServer) classificationResponse(text string) string {
	for _, v := range f.verdicts {
		if strings.Contains(text, v.contains) {
			return v.verdict
		}
	}
	return "DISTINCT"
}
