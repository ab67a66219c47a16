package behave

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/programme-lv/coderun/api"
)

// SpecLimits describes resource limits for a scenario request. Zero fields
// fall back to the executor defaults.
type SpecLimits struct {
	CpuSec int `toml:"cpu_sec"`
	MemMB  int `toml:"mem_mb"`
	DiskMB int `toml:"disk_mb"`
	Nproc  int `toml:"nproc"`
}

// SpecRequest represents a request block inside a scenario entry
type SpecRequest struct {
	Lang   string     `toml:"lang"`
	Code   string     `toml:"code"`
	Stdin  string     `toml:"stdin"`
	Limits SpecLimits `toml:"limits"`
}

// SpecExpect describes what the execution must produce. Empty fields are not checked.
type SpecExpect struct {
	Status              string  `toml:"status"`
	Stdout              *string `toml:"stdout"`
	CompileInfoContains string  `toml:"compile_info_contains"`
	TimedOut            *bool   `toml:"timed_out"`
}

type specSuite struct {
	Description string      `toml:"description"`
	Request     SpecRequest `toml:"request"`
	Expect      SpecExpect  `toml:"expect"`
}

type specRoot struct {
	Suites []specSuite `toml:"scenarios"`
}

// Case is a runnable scenario converted from TOML
type Case struct {
	Name    string
	Request api.ExecReq
	Expect  SpecExpect
}

// Parse reads a behaviour TOML file and converts it to runnable cases using api.ExecReq
func Parse(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read behaviour file: %w", err)
	}
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cases := make([]Case, 0, len(root.Suites))
	for i, suite := range root.Suites {
		name := suite.Description
		if name == "" {
			name = fmt.Sprintf("scenario #%d", i+1)
		}
		if suite.Request.Lang == "" {
			return nil, fmt.Errorf("%s: request is missing lang", name)
		}
		if suite.Expect.Status == "" {
			return nil, fmt.Errorf("%s: expect is missing status", name)
		}

		lim := suite.Request.Limits
		cases = append(cases, Case{
			Name: name,
			Request: api.ExecReq{
				Uuid:  uuid.NewString(),
				Lang:  suite.Request.Lang,
				Code:  suite.Request.Code,
				Stdin: suite.Request.Stdin,
				Limits: api.Limits{
					CpuSec: lim.CpuSec,
					MemMB:  lim.MemMB,
					DiskMB: lim.DiskMB,
					Nproc:  lim.Nproc,
				},
			},
			Expect: suite.Expect,
		})
	}

	return cases, nil
}

// Check compares an execution result with the expectation of the case.
func (c Case) Check(res api.ExecRes) error {
	var problems []string
	if string(res.Status) != c.Expect.Status {
		problems = append(problems, fmt.Sprintf("status: want %q, got %q", c.Expect.Status, res.Status))
	}
	if c.Expect.Stdout != nil && *c.Expect.Stdout != res.Stdout {
		problems = append(problems, fmt.Sprintf("stdout: want %q, got %q", *c.Expect.Stdout, res.Stdout))
	}
	if c.Expect.CompileInfoContains != "" && !strings.Contains(res.CompileInfo, c.Expect.CompileInfoContains) {
		problems = append(problems, fmt.Sprintf("compile info does not contain %q: %q",
			c.Expect.CompileInfoContains, api.TrimStrToRect(res.CompileInfo, 5, api.MaxPreviewWidth)))
	}
	if c.Expect.TimedOut != nil && *c.Expect.TimedOut != res.TimedOut {
		problems = append(problems, fmt.Sprintf("timed out: want %t, got %t", *c.Expect.TimedOut, res.TimedOut))
	}
	if res.ErrorMessage != nil && c.Expect.Status != string(res.Status) {
		problems = append(problems, "error: "+*res.ErrorMessage)
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(problems, "; "))
}
