package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/library"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestDemoOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, "demo")
	require.NoError(t, err)

	want := `John Doe borrowed 1984 from Main Branch branch
John Doe borrowed Digital Fortress from East Side Branch branch
John Doe rated the book '1984' with 5 stars

Items in the Library:
Book: 1984 by George Orwell, ISBN: 123456789, Category: Dystopian
EBook: Digital Fortress by Dan Brown, ISBN: 1122334455, Category: Thriller, File Size: 5MB
Invoice for John Doe: Total Fine = 6 USD
John Doe returned 1984 to Main Branch branch

Total items in the library: 2
`
	assert.Equal(t, want, out)
}

func TestDemoJSON(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, "demo", "--json")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 5)

	var first map[string]any
	require.NoError(t, jsoniter.UnmarshalFromString(lines[0], &first))
	assert.Equal(t, "ItemBorrowed", first["type"])

	summaryStart := strings.Index(out, "{\n")
	require.GreaterOrEqual(t, summaryStart, 0)
	var summary demoSummary
	require.NoError(t, jsoniter.UnmarshalFromString(out[summaryStart:], &summary))
	assert.Equal(t, 2, summary.TotalItems)
	assert.EqualValues(t, 6, summary.Invoice.Total)
	assert.Len(t, summary.Items, 2)
}

func TestFineCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "days and items",
			args: []string{"fine", "--days", "3", "--items", "2"},
			want: "Fine for 2 item(s), 3 day(s) overdue: 6 USD\n",
		},
		{
			name: "not overdue",
			args: []string{"fine", "--days", "0", "--items", "4"},
			want: "Fine for 4 item(s), 0 day(s) overdue: 0 USD\n",
		},
		{
			name: "overflow saturates",
			args: []string{"fine", "--days", "9223372036854775807", "--items", "2"},
			want: "Fine for 2 item(s), 9223372036854775807 day(s) overdue: 9223372036854775807 USD\n",
		},
		{
			name: "many items",
			args: []string{"fine", "--days", "1", "--items", "1000000000000"},
			want: "Fine for 1000000000000 item(s), 1 day(s) overdue: 1000000000000 USD\n",
		},
		{
			name: "from dates",
			args: []string{"fine", "--due", "2024-03-01", "--returned", "2024-03-04", "--items", "2"},
			want: "Fine for 2 item(s), 3 day(s) overdue: 6 USD\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestJSONRecorderReportsWriteErrors(t *testing.T) {
	var errOut bytes.Buffer
	r := jsonRecorder{w: failingWriter{}, errW: &errOut}

	r.Record(library.Event{Type: library.EventFinePaid, PatronName: "John Doe", Amount: 3})
	assert.Equal(t, "write event: disk full\n", errOut.String())
}

func TestFineUsesConfiguredRate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfg := filepath.Join(dir, "library.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("billing:\n  daily_rate: 2\n"), 0o644))

	out, _, err := execute(t, "fine", "--days", "3", "--items", "2")
	require.NoError(t, err)
	assert.Equal(t, "Fine for 2 item(s), 3 day(s) overdue: 12 USD\n", out)

	t.Setenv("LIBRARY_BILLING_DAILY_RATE", "5")
	out, _, err = execute(t, "fine", "--days", "1", "--items", "1", "--json")
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, jsoniter.UnmarshalFromString(out, &got))
	assert.Equal(t, 5, got["fine"])
	assert.Equal(t, 5, got["daily_rate"])
}

func TestInvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("LIBRARY_CIRCULATION_BRANCH_POLICY", "teleport")
	_, _, err := execute(t, "demo")
	assert.ErrorContains(t, err, "circulation.branch_policy")
}

func TestTransferPolicyDemo(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LIBRARY_CIRCULATION_BRANCH_POLICY", "transfer")

	out, _, err := execute(t, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Total items in the library: 2")
}

func TestVersion(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "library v"+version+"\n", out)
}
