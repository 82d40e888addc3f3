package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lekesiz/netz-rag/internal/core/domain"
	"github.com/lekesiz/netz-rag/internal/core/ports/driving"
)

// fakeRAGService records calls and returns canned results.
type fakeRAGService struct {
	lastQuery  string
	lastK      int
	lastFilter string
	lastIDs    []string
	addedKB    map[string]any
	results    []domain.SearchResult
	contextOut string
}

func (f *fakeRAGService) AddDocument(_ context.Context, content string, _ driving.AddOptions) (string, error) {
	return domain.Fingerprint(content), nil
}

func (f *fakeRAGService) AddKnowledgeBase(_ context.Context, kb map[string]any) (int, error) {
	f.addedKB = kb
	return len(kb), nil
}

func (f *fakeRAGService) Search(_ context.Context, query string, k int, filterType string) ([]domain.SearchResult, error) {
	f.lastQuery = query
	f.lastK = k
	f.lastFilter = filterType
	return f.results, nil
}

func (f *fakeRAGService) ContextForQuery(_ context.Context, query string, _ int) (string, error) {
	f.lastQuery = query
	return f.contextOut, nil
}

func (f *fakeRAGService) Delete(_ context.Context, ids []string) error {
	f.lastIDs = ids
	return nil
}

func (f *fakeRAGService) Stats(_ context.Context) (domain.Stats, error) {
	return domain.Stats{
		TotalDocuments:  3,
		TotalQueries:    7,
		DocumentTypes:   map[string]int{"text": 2, "faq": 1},
		Backend:         "array",
		StorageLocation: "/tmp/test",
	}, nil
}

var _ driving.RAGService = (*fakeRAGService)(nil)

func setupTestService(fake *fakeRAGService) func() {
	original := ragService
	ragService = fake
	return func() {
		ragService = original
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "search")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestSearchCmd_PassesTypeFilter(t *testing.T) {
	fake := &fakeRAGService{}
	defer setupTestService(fake)()

	out, err := execute(t, "search", "--type", "faq", "opening hours")

	assert.NoError(t, err)
	assert.Equal(t, "opening hours", fake.lastQuery)
	assert.Equal(t, "faq", fake.lastFilter)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_RendersResults(t *testing.T) {
	fake := &fakeRAGService{
		results: []domain.SearchResult{
			{
				Document: domain.Document{
					ID:        "abcdef1234567890",
					Content:   "Python training for beginners",
					Metadata:  map[string]any{"title": "Python course", "type": "service"},
					CreatedAt: time.Now(),
				},
				Score: 0.91,
			},
		},
	}
	defer setupTestService(fake)()

	out, err := execute(t, "search", "python")

	assert.NoError(t, err)
	assert.Contains(t, out, "Python course")
	assert.Contains(t, out, "0.910")
	assert.Contains(t, out, "Type: service")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	fake := &fakeRAGService{
		results: []domain.SearchResult{
			{Document: domain.Document{ID: "doc-1", Content: "hello"}, Score: 0.5},
		},
	}
	defer setupTestService(fake)()

	out, err := execute(t, "search", "--json", "hello")
	require.NoError(t, err)

	var decoded []domain.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "doc-1", decoded[0].Document.ID)
}

func TestAddCmd_ReturnsID(t *testing.T) {
	fake := &fakeRAGService{}
	defer setupTestService(fake)()

	out, err := execute(t, "add", "some content")

	assert.NoError(t, err)
	assert.Contains(t, out, "Added document "+domain.Fingerprint("some content"))
}

func TestAddCmd_ReadsFromFile(t *testing.T) {
	fake := &fakeRAGService{}
	defer setupTestService(fake)()

	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("file content"), 0o644))

	out, err := execute(t, "add", "--file", path)
	defer func() { addFile = "" }()

	assert.NoError(t, err)
	assert.Contains(t, out, domain.Fingerprint("file content"))
}

func TestAddCmd_RequiresContent(t *testing.T) {
	fake := &fakeRAGService{}
	defer setupTestService(fake)()

	_, err := execute(t, "add")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "provide content")
}

func TestImportCmd_ParsesFile(t *testing.T) {
	fake := &fakeRAGService{}
	defer setupTestService(fake)()

	path := filepath.Join(t.TempDir(), "kb.json")
	kb := `{"services": {"python": "Python training"}, "faq": ["We open at 9am"]}`
	require.NoError(t, os.WriteFile(path, []byte(kb), 0o644))

	out, err := execute(t, "import", path)

	assert.NoError(t, err)
	assert.Contains(t, out, "Imported 2 documents")
	assert.Contains(t, fake.addedKB, "services")
	assert.Contains(t, fake.addedKB, "faq")
}

func TestImportCmd_RejectsBadJSON(t *testing.T) {
	fake := &fakeRAGService{}
	defer setupTestService(fake)()

	path := filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := execute(t, "import", path)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestContextCmd_PrintsBlock(t *testing.T) {
	fake := &fakeRAGService{contextOut: "snippet one\nsnippet two"}
	defer setupTestService(fake)()

	out, err := execute(t, "context", "python training")

	assert.NoError(t, err)
	assert.Contains(t, out, "snippet one")
	assert.Contains(t, out, "snippet two")
}

func TestContextCmd_EmptyBlock(t *testing.T) {
	fake := &fakeRAGService{}
	defer setupTestService(fake)()

	out, err := execute(t, "context", "anything")

	assert.NoError(t, err)
	assert.Contains(t, out, "No relevant context found.")
}

func TestDeleteCmd_PassesIDs(t *testing.T) {
	fake := &fakeRAGService{}
	defer setupTestService(fake)()

	out, err := execute(t, "delete", "id-1", "id-2")

	assert.NoError(t, err)
	assert.Equal(t, []string{"id-1", "id-2"}, fake.lastIDs)
	assert.Contains(t, out, "Deleted 2 document(s)")
}

func TestStatsCmd_Table(t *testing.T) {
	fake := &fakeRAGService{}
	defer setupTestService(fake)()

	out, err := execute(t, "stats")

	assert.NoError(t, err)
	assert.Contains(t, out, "Documents:  3")
	assert.Contains(t, out, "Queries:    7")
	assert.Contains(t, out, "Backend:    array")
	assert.Contains(t, out, "faq")
}

func TestStatsCmd_JSON(t *testing.T) {
	fake := &fakeRAGService{}
	defer setupTestService(fake)()

	out, err := execute(t, "stats", "--json")
	require.NoError(t, err)

	var decoded domain.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 3, decoded.TotalDocuments)
	assert.Equal(t, "array", decoded.Backend)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "netz-rag version test-version-1.0.0")
}

func TestCommandsRequireService(t *testing.T) {
	defer setupTestService(nil)()
	ragService = nil

	for _, args := range [][]string{
		{"search", "q"},
		{"add", "content"},
		{"delete", "id"},
		{"stats"},
		{"context", "q"},
	} {
		_, err := execute(t, args...)
		assert.Error(t, err, "command %v should fail without a service", args)
		assert.Contains(t, err.Error(), "not configured")
	}
}
