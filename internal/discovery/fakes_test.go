package discovery

import (
	"context"
	"sync"

	"github.com/mmcdole/dlcscan/internal/domain"
)

type fakeProvider struct {
	platform  domain.Platform
	programs  []domain.InstalledProgram
	noExec    map[string]bool // install dirs without executables
	noLibs    map[string]bool // install dirs without SDK libraries
	primary   domain.MetadataSource
	secondary domain.MetadataSource
	throttled bool
	publisher string

	// execHook runs at the start of ExecutableDirectories
	execHook func(ctx context.Context) error
}

func (f *fakeProvider) Platform() domain.Platform { return f.platform }

func (f *fakeProvider) InstalledPrograms(ctx context.Context) ([]domain.InstalledProgram, error) {
	return f.programs, nil
}

func (f *fakeProvider) ExecutableDirectories(ctx context.Context, dir string) ([]string, error) {
	if f.execHook != nil {
		if err := f.execHook(ctx); err != nil {
			return nil, err
		}
	}
	if f.noExec[dir] {
		return nil, nil
	}
	return []string{dir}, nil
}

func (f *fakeProvider) LibraryDirectories(ctx context.Context, dir string) ([]string, error) {
	if f.noLibs[dir] {
		return nil, nil
	}
	return []string{dir + "/bin"}, nil
}

func (f *fakeProvider) Primary() domain.MetadataSource   { return f.primary }
func (f *fakeProvider) Secondary() domain.MetadataSource { return f.secondary }
func (f *fakeProvider) Throttled() bool                  { return f.throttled }

// umbrellaProvider adds domain.Umbrella to fakeProvider
type umbrellaProvider struct {
	*fakeProvider
}

func (u umbrellaProvider) UmbrellaPublisher() string { return u.publisher }

type fakeSource struct {
	name     string
	programs map[string]*domain.ProgramMetadata
	addOns   map[string]*domain.AddOn
	errs     map[string]error

	// Hooks run before answering; a non-nil error is returned as the answer
	programHook func(ctx context.Context, id string) error
	addOnHook   func(ctx context.Context, id string) error

	mu          sync.Mutex
	addOnCalls  []string
	programCall []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Program(ctx context.Context, id string) (*domain.ProgramMetadata, error) {
	f.mu.Lock()
	f.programCall = append(f.programCall, id)
	f.mu.Unlock()
	if f.programHook != nil {
		if err := f.programHook(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.programs[id], nil
}

func (f *fakeSource) AddOn(ctx context.Context, id string) (*domain.AddOn, error) {
	f.mu.Lock()
	f.addOnCalls = append(f.addOnCalls, id)
	f.mu.Unlock()
	if f.addOnHook != nil {
		if err := f.addOnHook(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.addOns[id], nil
}

func (f *fakeSource) addOnCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.addOnCalls)
}

// blockFunc adapts a function to domain.BlockList
type blockFunc func(name, dir string) bool

func (b blockFunc) IsBlocked(name, dir string) bool { return b(name, dir) }

// recorder keeps every progress report
type recorder struct {
	mu      sync.Mutex
	reports []domain.ScanProgress
}

func (r *recorder) OnProgress(p domain.ScanProgress) {
	r.mu.Lock()
	r.reports = append(r.reports, p)
	r.mu.Unlock()
}

func (r *recorder) all() []domain.ScanProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ScanProgress(nil), r.reports...)
}

func (r *recorder) last() domain.ScanProgress {
	all := r.all()
	if len(all) == 0 {
		return domain.ScanProgress{}
	}
	return all[len(all)-1]
}

func program(id, name string) domain.InstalledProgram {
	return domain.InstalledProgram{ID: id, Name: name, InstallDir: "/games/" + id}
}

func key(p domain.Platform, id string) domain.ProgramKey {
	return domain.ProgramKey{Platform: p, ID: id}
}

// gateBusy reports whether any primary query holds g
func gateBusy(g *gate) bool {
	g.mu.Lock()
	idle := g.idle
	g.mu.Unlock()
	select {
	case <-idle:
		return false
	default:
		return true
	}
}
