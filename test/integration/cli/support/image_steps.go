package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/matrixscan/internal/batch"
	"github.com/MeKo-Tech/matrixscan/internal/testutil"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
	"github.com/cucumber/godog"
)

func fixtureByName(name string) (testutil.SymbolFixture, error) {
	for _, f := range testutil.SampleFixtures() {
		if f.Name == name {
			return f, nil
		}
	}
	return testutil.SymbolFixture{}, fmt.Errorf("unknown symbol fixture %q", name)
}

// writeSymbol renders fixture name as dir/<name>.png below the scenario
// directory.
func (testCtx *TestContext) writeSymbol(name, dir string) error {
	f, err := fixtureByName(name)
	if err != nil {
		return err
	}
	outDir := testCtx.Path(dir)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	path := filepath.Join(outDir, name+".png")
	if err := utils.SaveImage(path, testutil.RenderSymbol(f.Symbol)); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	testCtx.Images[name] = path
	return nil
}

// theSampleSymbolImagesAreAvailable renders every sample fixture into
// {tmp}/images.
func (testCtx *TestContext) theSampleSymbolImagesAreAvailable() error {
	for _, f := range testutil.SampleFixtures() {
		if err := testCtx.writeSymbol(f.Name, "images"); err != nil {
			return err
		}
	}
	return nil
}

func (testCtx *TestContext) theSymbolImageIsInDirectory(name, dir string) error {
	return testCtx.writeSymbol(name, dir)
}

// aCorruptImage writes a file with an image extension but no image data.
func (testCtx *TestContext) aCorruptImage(name string) error {
	path := testCtx.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("this is not an image"), 0o600)
}

func (testCtx *TestContext) theOutputShouldBeTheValueOf(name string) error {
	f, err := fixtureByName(name)
	if err != nil {
		return err
	}
	return testCtx.theOutputShouldBe(f.Expected)
}

func (testCtx *TestContext) theOutputShouldContainTheValueOf(name string) error {
	f, err := fixtureByName(name)
	if err != nil {
		return err
	}
	if !strings.Contains(testCtx.LastOutput, f.Expected) {
		return fmt.Errorf("output does not contain the value %s of %s\nActual output: %s",
			f.Expected, name, testCtx.LastOutput)
	}
	return nil
}

// anOverlayShouldExistFor checks the overlay written for a rendered image.
func (testCtx *TestContext) anOverlayShouldExistFor(name, dir string) error {
	src, ok := testCtx.Images[name]
	if !ok {
		return fmt.Errorf("image %s was not rendered in this scenario", name)
	}
	path := batch.OverlayPath(testCtx.Path(dir), src)
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return fmt.Errorf("overlay %s not readable: %w", path, err)
	}
	if img.Bounds().Empty() {
		return fmt.Errorf("overlay %s is empty", path)
	}
	return nil
}

// theDirectoryShouldContainPNGFiles checks debug image output.
func (testCtx *TestContext) theDirectoryShouldContainPNGFiles(dir string) error {
	matches, err := filepath.Glob(filepath.Join(testCtx.Path(dir), "*.png"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no PNG files in %s", dir)
	}
	return nil
}

// RegisterImageSteps registers image fixture steps.
func (testCtx *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the sample symbol images are available$`, testCtx.theSampleSymbolImagesAreAvailable)
	sc.Step(`^the symbol image "([^"]*)" is in directory "([^"]*)"$`, testCtx.theSymbolImageIsInDirectory)
	sc.Step(`^a corrupt image "([^"]*)"$`, testCtx.aCorruptImage)
	sc.Step(`^the output should be the value of "([^"]*)"$`, testCtx.theOutputShouldBeTheValueOf)
	sc.Step(`^the output should contain the value of "([^"]*)"$`, testCtx.theOutputShouldContainTheValueOf)
	sc.Step(`^an overlay should exist for "([^"]*)" in "([^"]*)"$`, testCtx.anOverlayShouldExistFor)
	sc.Step(`^the directory "([^"]*)" should contain PNG files$`, testCtx.theDirectoryShouldContainPNGFiles)
}
