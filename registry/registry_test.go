package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frankban/quicktest"
)

func TestDeploy_WritesArtifactsAndRegistry(t *testing.T) {
	c := quicktest.New(t)
	dir := t.TempDir()

	r, err := Open(dir)
	c.Assert(err, quicktest.IsNil)

	entry, err := r.Deploy(Entry{
		BoardID:  "4567",
		Name:     "Production Orders",
		Table:    "dbo.orders",
		Schedule: "0 5 * * *",
	})
	c.Assert(err, quicktest.IsNil)
	c.Assert(entry.Key(), quicktest.Equals, "production_orders")
	c.Assert(entry.KeyColumn, quicktest.Equals, "item_id")

	pipeline, err := os.ReadFile(filepath.Join(dir, "pipelines", "production_orders.yaml"))
	c.Assert(err, quicktest.IsNil)
	c.Assert(string(pipeline), quicktest.Contains, `board_id: "4567"`)
	c.Assert(string(pipeline), quicktest.Contains, "table: dbo.orders")
	c.Assert(string(pipeline), quicktest.Contains, "key_column: item_id")

	workflow, err := os.ReadFile(filepath.Join(dir, "workflows", "production_orders.yaml"))
	c.Assert(err, quicktest.IsNil)
	c.Assert(string(workflow), quicktest.Contains, "id: production_orders")
	c.Assert(string(workflow), quicktest.Contains, `cron: "0 5 * * *"`)
	c.Assert(string(workflow), quicktest.Contains, "mondaysync run --config pipelines/production_orders.yaml")

	// The registry survives a reopen.
	r2, err := Open(dir)
	c.Assert(err, quicktest.IsNil)
	c.Assert(r2.Boards, quicktest.HasLen, 1)
	c.Assert(r2.Find("4567").Name, quicktest.Equals, "Production Orders")
	c.Assert(r2.Find("9999"), quicktest.IsNil)
}

func TestDeploy_RejectsDuplicatesAndBadInput(t *testing.T) {
	c := quicktest.New(t)
	dir := t.TempDir()

	r, err := Open(dir)
	c.Assert(err, quicktest.IsNil)

	_, err = r.Deploy(Entry{BoardID: "1", Name: "Orders", Table: "orders"})
	c.Assert(err, quicktest.IsNil)

	_, err = r.Deploy(Entry{BoardID: "1", Name: "Orders Again", Table: "orders2"})
	c.Assert(err, quicktest.ErrorMatches, `board 1 is already deployed as "Orders"; use update`)

	_, err = r.Deploy(Entry{Name: "No Board", Table: "t"})
	c.Assert(err, quicktest.ErrorMatches, "deploy needs a board id, name and table")

	_, err = r.Deploy(Entry{BoardID: "2", Name: "___", Table: "t"})
	c.Assert(err, quicktest.ErrorMatches, `board name "___" produces an empty file name`)
}

func TestUpdate_RegeneratesArtifacts(t *testing.T) {
	c := quicktest.New(t)
	dir := t.TempDir()

	r, err := Open(dir)
	c.Assert(err, quicktest.IsNil)

	entry, err := r.Deploy(Entry{BoardID: "1", Name: "Orders", Table: "orders"})
	c.Assert(err, quicktest.IsNil)
	deployedAt := entry.DeployedAt

	// Simulate a manual deletion of the workflow file.
	c.Assert(os.Remove(filepath.Join(dir, entry.WorkflowFile)), quicktest.IsNil)

	updated, err := r.Update("1")
	c.Assert(err, quicktest.IsNil)
	c.Assert(updated.DeployedAt, quicktest.Equals, deployedAt)
	c.Assert(updated.UpdatedAt.Before(deployedAt), quicktest.Equals, false)

	_, err = os.Stat(filepath.Join(dir, entry.WorkflowFile))
	c.Assert(err, quicktest.IsNil)

	_, err = r.Update("404")
	c.Assert(err, quicktest.ErrorMatches, "board 404 is not deployed")
}

func TestSummarize(t *testing.T) {
	c := quicktest.New(t)
	dir := t.TempDir()

	r, err := Open(dir)
	c.Assert(err, quicktest.IsNil)

	_, err = r.Deploy(Entry{BoardID: "1", Name: "Orders", Table: "orders"})
	c.Assert(err, quicktest.IsNil)
	_, err = r.Deploy(Entry{BoardID: "2", Name: "Shipments", Table: "shipments", Schedule: "0 7 * * *"})
	c.Assert(err, quicktest.IsNil)
	_, err = r.Deploy(Entry{BoardID: "3", Name: "Orders Archive", Table: "orders"})
	c.Assert(err, quicktest.IsNil)

	s := r.Summarize()
	c.Assert(s.Boards, quicktest.Equals, 3)
	c.Assert(s.Tables, quicktest.DeepEquals, []string{"orders", "shipments"})
	c.Assert(s.Schedules["0 6 * * *"], quicktest.Equals, 2)
	c.Assert(s.Schedules["0 7 * * *"], quicktest.Equals, 1)
}

func TestEntryKey(t *testing.T) {
	c := quicktest.New(t)
	c.Assert((&Entry{Name: "Production Orders (AU)"}).Key(), quicktest.Equals, "production_orders__au")
	c.Assert((&Entry{Name: "  MO Plan 2024  "}).Key(), quicktest.Equals, "mo_plan_2024")
}

func TestOpen_BadRegistryFile(t *testing.T) {
	c := quicktest.New(t)
	dir := t.TempDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "registry.yaml"), []byte("boards: {not a list}"), 0o644), quicktest.IsNil)

	_, err := Open(dir)
	c.Assert(err, quicktest.ErrorMatches, "failed to parse registry: .*")
	c.Assert(strings.Contains(err.Error(), "yaml"), quicktest.Equals, true)
}
