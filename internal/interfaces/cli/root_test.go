package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/urban-dds/internal/domain/region"
	"github.com/turtacn/urban-dds/internal/intelligence/narrative"
	"github.com/turtacn/urban-dds/pkg/errors"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "urbandds", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"resolve", "summary", "metrics", "analyze", "reports", "probe", "serve", "migrate", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	for _, flag := range []string{"config", "log-level", "output", "verbose", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}
	assert.Equal(t, OutputText, cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestRoot_RejectsUnknownOutputFormat(t *testing.T) {
	_, _, err := runCLI(t, "version", "--output", "yaml")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidParam))
}

func TestVersionCmd(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "urbandds "+Version)

	out, _, err = runCLI(t, "version", "-o", "json")
	require.NoError(t, err)
	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.Commit)
}

func TestResolveCmd(t *testing.T) {
	out, _, err := runCLI(t, "resolve", "서울", "마포구")
	require.NoError(t, err)
	assert.Contains(t, out, "서울 마포구")
	assert.Contains(t, out, "code=mapo-gu")

	out, _, err = runCLI(t, "resolve", "마포구", "-o", "table")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[2], "mapo-gu")

	out, _, err = runCLI(t, "resolve", "mapo", "-o", "json")
	require.NoError(t, err)
	var r region.Region
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "mapo-gu", r.Code)
}

func TestResolveCmd_Errors(t *testing.T) {
	_, _, err := runCLI(t, "resolve")
	assert.Error(t, err)

	_, _, err = runCLI(t, "resolve", "  ")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegionNotFound))
}

func TestMetricsCmd(t *testing.T) {
	out, _, err := runCLI(t, "metrics", "mapo-gu", "-o", "json")
	require.NoError(t, err)
	var got struct {
		RegionCode string         `json:"regionCode"`
		Metrics    region.Metrics `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "mapo-gu", got.RegionCode)
	assert.NoError(t, got.Metrics.Validate())

	_, _, err = runCLI(t, "metrics", "atlantis")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSummaryCmd_WithoutPublicData(t *testing.T) {
	out, _, err := runCLI(t, "summary", "마포구", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "PRIORITY")
	assert.Contains(t, out, "mapo-gu")
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	out, _, err := runCLI(t, "analyze", "--region", "mapo-gu", "--aging", "90", "--infra", "85", "-o", "json")
	require.NoError(t, err)

	var report struct {
		RegionCode string         `json:"regionCode"`
		Metrics    region.Metrics `json:"metrics"`
		AISource   string         `json:"aiSource"`
		Confidence int            `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "mapo-gu", report.RegionCode)
	assert.Equal(t, 90.0, report.Metrics.AgingScore)
	assert.Equal(t, 85.0, report.Metrics.InfraRisk)
	assert.Equal(t, narrative.SourceFallback, report.AISource)
	assert.Equal(t, 62, report.Confidence)
}

func TestAnalyzeCmd_Markdown(t *testing.T) {
	out, _, err := runCLI(t, "analyze", "--region", "mapo-gu", "--markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Urban-DDS 분석 리포트"))
}

func TestAnalyzeCmd_SaveWithoutStorage(t *testing.T) {
	_, stderr, err := runCLI(t, "analyze", "--region", "mapo-gu", "--save")
	require.NoError(t, err)
	assert.Contains(t, stderr, "report not saved: persistence-disabled")
}

func TestAnalyzeCmd_Errors(t *testing.T) {
	_, _, err := runCLI(t, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"region"`)

	_, _, err = runCLI(t, "analyze", "--region", "mapo-gu", "--aging", "150")
	require.Error(t, err)
	assert.Contains(t, err.Error(), region.MetricsValidationMessage)

	_, _, err = runCLI(t, "analyze", "--region", "atlantis")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAnalyzeCmd_UnknownRegionWithAllMetrics(t *testing.T) {
	out, _, err := runCLI(t, "analyze", "--region", "custom-zone",
		"--aging", "40", "--infra", "30", "--market", "70", "--policy", "60", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "custom-zone")
}

func TestReportsCmds_WithoutStorage(t *testing.T) {
	out, _, err := runCLI(t, "reports", "list")
	require.NoError(t, err)
	assert.Equal(t, "no reports\n", out)

	_, _, err = runCLI(t, "reports", "search", "마포")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFeatureDisabled))
}

func TestProbeCmd_Errors(t *testing.T) {
	_, _, err := runCLI(t, "probe", "--mode", "everything")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidParam))

	t.Setenv("URBANDDS_PUBLIC_DATA_SERVICE_KEY", "")
	t.Setenv("DATA_GO_KR_SERVICE_KEY", "")
	_, _, err = runCLI(t, "probe")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePublicDataKeyMissing))
}

func TestMigrateCmd_Errors(t *testing.T) {
	_, _, err := runCLI(t, "migrate", "up")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFeatureDisabled))

	_, _, err = runCLI(t, "migrate", "down", "zero")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidParam))
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"CODE", "NAME"}, [][]string{{"mapo-gu", "서울 마포구"}, {"x", "y"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "CODE     NAME  ", lines[0][:15])
	assert.Equal(t, "-------  ------", lines[1])
	assert.Equal(t, "mapo-gu  서울 마포구", lines[2])
	assert.Equal(t, "x        y     ", lines[3])

	assert.Empty(t, FormatTable(nil, nil))
}

func TestPrintResult_WithoutContextFallsBackToJSON(t *testing.T) {
	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	require.NoError(t, PrintResult(cmd, map[string]int{"n": 1}))
	assert.JSONEq(t, `{"n":1}`, out.String())
}

//Personal.AI order the ending
