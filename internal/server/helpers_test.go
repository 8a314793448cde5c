package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
	"github.com/MeKo-Tech/matrixscan/internal/preprocess"
	"github.com/MeKo-Tech/matrixscan/internal/testutil"
	"github.com/stretchr/testify/require"
)

func testPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Preprocess.Method = preprocess.MethodFixed
	cfg.Preprocess.Blur = false
	return cfg
}

// newTestServer builds a server around a real extractor.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	s, err := NewServer(Config{
		CORSOrigin:      "*",
		MaxUploadMB:     1,
		TimeoutSec:      5,
		PipelineConfig:  testPipelineConfig(),
		OverlayBoxColor: "#00FF00",
	})
	require.NoError(t, err)
	return s
}

// fixturePNG renders a named sample fixture as PNG bytes.
func fixturePNG(t *testing.T, name string) (testutil.SymbolFixture, []byte) {
	t.Helper()

	for _, f := range testutil.SampleFixtures() {
		if f.Name == name {
			return f, testutil.EncodePNG(t, testutil.RenderSymbol(f.Symbol))
		}
	}
	t.Fatalf("unknown fixture %s", name)
	return testutil.SymbolFixture{}, nil
}

// createMultipartFormRequest creates a POST /decode request carrying data
// in the "image" field.
func createMultipartFormRequest(
	t *testing.T,
	data []byte,
	filename string,
	extraFields map[string]string,
) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if data != nil {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}

	for key, value := range extraFields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/decode", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
