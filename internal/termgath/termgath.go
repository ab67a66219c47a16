package termgath

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/programme-lv/coderun/api"
)

// Printer writes execution results for a person at a terminal. Program
// output goes to Out, everything else to Err.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

func New() *Printer { return &Printer{Out: os.Stdout, Err: os.Stderr} }

var (
	good = color.New(color.FgGreen, color.Bold).SprintFunc()
	bad  = color.New(color.FgRed, color.Bold).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
)

func (p *Printer) Result(res api.ExecRes) {
	if res.CompileInfo != "" {
		fmt.Fprintln(p.Err, dim("-- compiler output --"))
		fmt.Fprintln(p.Err, res.CompileInfo)
	}
	fmt.Fprint(p.Out, res.Stdout)
	if res.Stderr != "" {
		fmt.Fprintln(p.Err, dim("-- stderr --"))
		fmt.Fprint(p.Err, res.Stderr)
	}

	status := good
	if res.Status != api.Success {
		status = bad
	}
	fmt.Fprintf(p.Err, "== %s %s exit=%d in %dms ==\n", status(res.Status), res.Version, res.ExitStatus, res.TotalTimeMs)
	if res.ErrorMessage != nil {
		fmt.Fprintln(p.Err, bad(*res.ErrorMessage))
	}
}

// Verdict prints one behaviour scenario outcome. err is nil for a pass.
func (p *Printer) Verdict(name string, res api.ExecRes, err error) {
	if err != nil {
		fmt.Fprintf(p.Out, "%s %s\n     %s\n", bad("FAIL"), name, err)
		return
	}
	fmt.Fprintf(p.Out, "%s %s %s\n", good("PASS"), name, dim(fmt.Sprintf("(%dms)", res.TotalTimeMs)))
}

func (p *Printer) Summary(passed, total int) {
	summary := good
	if passed != total {
		summary = bad
	}
	fmt.Fprintln(p.Out, summary(fmt.Sprintf("%d/%d scenarios passed", passed, total)))
}
