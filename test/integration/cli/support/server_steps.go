package support

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/matrixscan/internal/config"
	"github.com/MeKo-Tech/matrixscan/internal/server"
	"github.com/cucumber/godog"
)

// theDecodeServerIsRunning starts an in-process server with the stage
// settings the synthetic symbols are rendered for.
func (testCtx *TestContext) theDecodeServerIsRunning() error {
	return testCtx.startServer(0)
}

func (testCtx *TestContext) theDecodeServerIsRunningWithRateLimit(limit int) error {
	return testCtx.startServer(limit)
}

func (testCtx *TestContext) startServer(rateLimit int) error {
	testCtx.StopServer()

	cfg := config.DefaultConfig()
	cfg.Preprocess.Method = "fixed"
	cfg.Preprocess.Blur = false

	srv, err := server.NewServer(server.Config{
		CORSOrigin:      "*",
		MaxUploadMB:     1,
		TimeoutSec:      10,
		PipelineConfig:  cfg.ToPipelineConfig(),
		OverlayBoxColor: cfg.Output.OverlayBoxColor,
		RateLimit:       rateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	testCtx.HTTPTestServer = httptest.NewServer(srv.Handler())
	return nil
}

func (testCtx *TestContext) serverURL(path string) (string, error) {
	if testCtx.HTTPTestServer == nil {
		return "", fmt.Errorf("server is not running")
	}
	return testCtx.HTTPTestServer.URL + path, nil
}

// do sends req and records the response.
func (testCtx *TestContext) do(req *http.Request) error {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(body)
	testCtx.LastHTTPHeaders = make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

// iRequest sends a body-less request to the server.
func (testCtx *TestContext) iRequest(method, path string) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return err
	}
	return testCtx.do(req)
}

// iUploadTheImage posts a file from the scenario directory to /decode.
func (testCtx *TestContext) iUploadTheImage(name string) error {
	return testCtx.upload(name, nil)
}

func (testCtx *TestContext) iUploadTheImageWithFormat(name, format string) error {
	return testCtx.upload(name, map[string]string{"format": format})
}

func (testCtx *TestContext) upload(name string, fields map[string]string) error {
	return testCtx.postFiles("/decode", "image", []string{name}, fields)
}

// iUploadTheImagesAsABatch posts a comma-separated list of files to
// /decode/batch.
func (testCtx *TestContext) iUploadTheImagesAsABatch(list string) error {
	var names []string
	for _, name := range strings.Split(list, ",") {
		names = append(names, strings.TrimSpace(name))
	}
	return testCtx.postFiles("/decode/batch", "images", names, nil)
}

func (testCtx *TestContext) postFiles(path, field string, names []string, fields map[string]string) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, name := range names {
		data, err := os.ReadFile(testCtx.Path(name))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		part, err := writer.CreateFormFile(field, filepath.Base(name))
		if err != nil {
			return err
		}
		if _, err := part.Write(data); err != nil {
			return err
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return testCtx.do(req)
}

// iUploadTheImageTimes repeats an upload, keeping the last response.
func (testCtx *TestContext) iUploadTheImageTimes(name string, n int) error {
	for range n {
		if err := testCtx.iUploadTheImage(name); err != nil {
			return err
		}
	}
	return nil
}

func (testCtx *TestContext) theResponseStatusShouldBe(status int) error {
	if testCtx.LastHTTPStatusCode != status {
		return fmt.Errorf("expected status %d, got %d\nBody: %s",
			status, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, expected string) error {
	if got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; got != expected {
		return fmt.Errorf("header %s is %q, expected %q", name, got, expected)
	}
	return nil
}

func (testCtx *TestContext) theResponseJSONFieldShouldBe(field, expected string) error {
	return jsonFieldEquals(testCtx.LastHTTPResponse, field, expected)
}

func (testCtx *TestContext) theResponseJSONFieldShouldBeTheValueOf(field, name string) error {
	f, err := fixtureByName(name)
	if err != nil {
		return err
	}
	return jsonFieldEquals(testCtx.LastHTTPResponse, field, f.Expected)
}

// RegisterServerSteps registers HTTP server steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the decode server is running$`, testCtx.theDecodeServerIsRunning)
	sc.Step(`^the decode server is running with a rate limit of (\d+) requests per minute$`,
		testCtx.theDecodeServerIsRunningWithRateLimit)

	sc.Step(`^I send a ([A-Z]+) request to "([^"]*)"$`, testCtx.iRequest)
	sc.Step(`^I upload the image "([^"]*)"$`, testCtx.iUploadTheImage)
	sc.Step(`^I upload the image "([^"]*)" with format "([^"]*)"$`, testCtx.iUploadTheImageWithFormat)
	sc.Step(`^I upload the image "([^"]*)" (\d+) times$`, testCtx.iUploadTheImageTimes)
	sc.Step(`^I upload the images "([^"]*)" as a batch$`, testCtx.iUploadTheImagesAsABatch)

	sc.Step(`^the response status should be (\d+)$`, func(statusStr string) error {
		status, err := strconv.Atoi(statusStr)
		if err != nil {
			return err
		}
		return testCtx.theResponseStatusShouldBe(status)
	})
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
	sc.Step(`^the response JSON field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseJSONFieldShouldBe)
	sc.Step(`^the response JSON field "([^"]*)" should be the value of "([^"]*)"$`,
		testCtx.theResponseJSONFieldShouldBeTheValueOf)
}
