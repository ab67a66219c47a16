package api

// ExecReq asks for one piece of code to be compiled and run.
type ExecReq struct {
	Uuid string `json:"uuid"`

	Lang  string `json:"lang"`
	Code  string `json:"code"`
	Stdin string `json:"stdin"`

	Limits Limits `json:"limits"`
}

// Limits mirror sandbox.Limits. Zero fields take the service defaults.
type Limits struct {
	CpuSec int `json:"cpu_sec"`
	MemMB  int `json:"mem_mb"`
	DiskMB int `json:"disk_mb"`
	Nproc  int `json:"nproc"`
}
