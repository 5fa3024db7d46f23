package acceptance

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures drives every .feature file under features/ against a
// real, built mnemos binary: MCP tool calls over stdio for the engine
// semantics scenarios, and direct CLI invocations for the inspection
// surface. Package-level unit tests in internal/engine cover the same
// invariants at finer grain; this suite is the cross-package,
// full-binary layer on top of them.
func TestFeatures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping acceptance tests in short mode")
	}

	tags := os.Getenv("GODOG_TAGS")
	if tags == "" {
		tags = "~@wip"
	}

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Tags:     tags,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("acceptance tests failed")
	}
}

// InitializeScenario wires every Gherkin step used under features/ to a
// TestContext method. Each scenario gets its own TestContext, reset
// before and torn down after.
func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &TestContext{}

	ctx.Before(func(goCtx context.Context, sc *godog.Scenario) (context.Context, error) {
		return goCtx, tc.reset()
	})
	ctx.After(func(goCtx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.teardown()
		return goCtx, nil
	})

	// Environment setup
	ctx.Step(`^a fresh mnemos data directory$`, tc.aFreshMnemosDataDir)
	ctx.Step(`^a fresh mnemos instance$`, tc.aFreshMnemosInstance)
	ctx.Step(`^the extraction fixture returns fact "([^"]+)" at intensity ([0-9.]+) for text containing "([^"]+)"$`, tc.theExtractionFixtureReturnsFact)
	ctx.Step(`^the embedding fixture returns vector "([^"]+)" for text containing "([^"]+)"$`, tc.theEmbeddingFixtureReturnsVector)
	ctx.Step(`^the classification fixture returns verdict "([^"]+)" for new facts containing "([^"]+)"$`, tc.theClassificationFixtureReturnsVerdict)

	// MCP tool calls
	ctx.Step(`^agent "([^"]+)" remembers the text "([^"]+)"$`, tc.agentRemembers)
	ctx.Step(`^agent "([^"]+)" forgets "([^"]+)"$`, tc.agentForgets)
	ctx.Step(`^agent "([^"]+)" stores the memory "([^"]+)"$`, tc.agentStoresMemory)
	ctx.Step(`^agent "([^"]+)" appends "([^"]+)" to block "([^"]+)"$`, tc.agentAppendsToBlock)
	ctx.Step(`^agent "([^"]+)" replaces "([^"]+)" with "([^"]+)" in block "([^"]+)"$`, tc.agentReplacesInBlock)
	ctx.Step(`^block "([^"]+)" for agent "([^"]+)" contains "([^"]+)"$`, tc.blockForAgentContains)

	// remember_facts assertions
	ctx.Step(`^the remember result includes an? "([^"]+)" action for "([^"]+)"$`, tc.rememberResultIncludesAction)
	ctx.Step(`^the remember result includes a "superseded" action replacing "([^"]+)" with "([^"]+)"$`, tc.rememberResultIncludesSupersededAction)
	ctx.Step(`^recalling "([^"]+)" for agent "([^"]+)" shows an encounter count of (\d+)$`, tc.recallingShowsEncounterCount)
	ctx.Step(`^recalling "([^"]+)" for agent "([^"]+)" returns (\d+) results?$`, tc.recallingReturnsNResults)

	// CLI driving
	ctx.Step(`^I run "([^"]+)"$`, tc.iRun)
	ctx.Step(`^the command succeeds$`, tc.theCommandSucceeds)
	ctx.Step(`^the output shows "([^"]+)"$`, tc.theOutputShows)
}
