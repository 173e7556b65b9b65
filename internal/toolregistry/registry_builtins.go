package toolregistry

import (
	"net/http"
	"time"

	"skillmint/internal/tools/exec"
	"skillmint/internal/tools/fileops"
	"skillmint/internal/tools/interact"
	"skillmint/internal/tools/memorytool"
	"skillmint/internal/tools/orchestration"
	"skillmint/internal/tools/procmgr"
	"skillmint/internal/tools/web"
)

// BuiltinsConfig supplies the session-scoped state the standard tool set
// needs to construct: where background processes live, where memory
// entries and skills are stored, the shared todo list, the search
// provider/cache, and the two interfaces (sub-agent runner, compactor)
// that recurse back into the agent loop.
type BuiltinsConfig struct {
	ProcessManager *procmgr.Manager
	MemoryDir      string
	SkillsDir      string
	CallStack      *orchestration.CallStack
	TodoStore      *memorytool.TodoStore
	SearchProvider web.SearchProvider
	SearchCache    *web.SearchCache
	HTTPClient     *http.Client
	SubAgentRunner orchestration.SubAgentRunner
	Prompter       interact.Prompter
	Compactor      interact.Compactor
}

// RegisterBuiltins constructs and registers the standard tool set
// described in spec.md §4.B, mirroring the teacher's
// registry_builtins.go split of platform/web/session/UI tool groups.
// Every tool is registered as a built-in (non-removable).
func RegisterBuiltins(r *Registry, cfg BuiltinsConfig) {
	if cfg.ProcessManager == nil {
		cfg.ProcessManager = procmgr.NewManager()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.TodoStore == nil {
		cfg.TodoStore = memorytool.NewTodoStore()
	}
	if cfg.CallStack == nil {
		cfg.CallStack = &orchestration.CallStack{}
	}
	if cfg.SearchProvider == nil {
		cfg.SearchProvider = web.DuckDuckGoProvider{Client: cfg.HTTPClient}
	}
	if cfg.SearchCache == nil {
		cfg.SearchCache = web.NewSearchCache(0, 0)
	}

	registerFileTools(r)
	registerExecTools(r, cfg)
	registerWebTools(r, cfg)
	registerMemoryTools(r, cfg)
	registerOrchestrationTools(r, cfg)
	registerInteractTools(r, cfg)
}

func registerFileTools(r *Registry) {
	r.Register(fileops.ReadFile{}, true)
	r.Register(fileops.WriteFile{}, true)
	r.Register(fileops.Edit{}, true)
	r.Register(fileops.Glob{}, true)
	r.Register(fileops.Grep{}, true)
	r.Register(fileops.ListDir{}, true)
	r.Register(fileops.FileStat{}, true)
	r.Register(fileops.FileDelete{}, true)
	r.Register(fileops.FileMove{}, true)
	r.Register(fileops.FileCopy{}, true)
}

func registerExecTools(r *Registry, cfg BuiltinsConfig) {
	r.Register(exec.Bash{Manager: cfg.ProcessManager}, true)
	r.Register(exec.BashOutput{Manager: cfg.ProcessManager}, true)
	r.Register(exec.BashKill{Manager: cfg.ProcessManager}, true)
	r.Register(exec.OpenInFolder{}, true)
	r.Register(exec.Screenshot{}, true)
}

func registerWebTools(r *Registry, cfg BuiltinsConfig) {
	r.Register(web.WebFetch{Client: cfg.HTTPClient}, true)
	r.Register(web.WebSearch{Provider: cfg.SearchProvider, Cache: cfg.SearchCache}, true)
}

func registerMemoryTools(r *Registry, cfg BuiltinsConfig) {
	r.Register(memorytool.Memory{MemoryDir: cfg.MemoryDir}, true)
	r.Register(memorytool.TodoWrite{Store: cfg.TodoStore}, true)
}

func registerOrchestrationTools(r *Registry, cfg BuiltinsConfig) {
	if cfg.SubAgentRunner != nil {
		r.Register(orchestration.Task{Runner: cfg.SubAgentRunner}, true)
	}
	r.Register(orchestration.Skill{SkillsDir: cfg.SkillsDir, Stack: cfg.CallStack}, true)
}

func registerInteractTools(r *Registry, cfg BuiltinsConfig) {
	if cfg.Prompter != nil {
		r.Register(interact.AskUser{Prompter: cfg.Prompter}, true)
	}
	if cfg.Compactor != nil {
		r.Register(interact.Compact{Compactor: cfg.Compactor}, true)
	}
}
