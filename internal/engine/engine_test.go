package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/pinkeeper/internal/config"
	"github.com/skaphos/pinkeeper/internal/engine"
	"github.com/skaphos/pinkeeper/internal/gitx"
	"github.com/skaphos/pinkeeper/internal/model"
	"github.com/skaphos/pinkeeper/internal/registry"
	"github.com/skaphos/pinkeeper/internal/resolve"
)

const hostFile = `package pins

type Repo struct {
	Name         string
	Version      string
	WatchedPaths []string
}

// BEGIN
var Repos = []Repo{
	{Name: "org/a", Version: "aaa0001", WatchedPaths: []string{"src"}},
	{Name: "org/b", Version: "HEAD", WatchedPaths: nil},
}
// END

func keep() {}
`

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Remote.BaseURL = "mem"
	return &cfg
}

func twoRemotes() map[string]*fakeRemote {
	return map[string]*fakeRemote{
		"org/a": {
			branches: map[string][]string{"aaa0001": {"origin/HEAD -> origin/main", "origin/main"}},
			latest:   "aaa0002",
		},
		"org/b": {
			branches: map[string][]string{"HEAD": {"origin/main"}},
			latest:   "bbb0009",
		},
	}
}

var _ = Describe("Engine", func() {
	var (
		ctx context.Context
		reg *registry.Registry
	)

	BeforeEach(func() {
		ctx = context.Background()
		reg = registry.New([]model.RepoRecord{
			{Name: "org/b", Version: "HEAD"},
			{Name: "org/a", Version: "aaa0001", WatchedPaths: []string{"src"}},
		})
	})

	It("advances pins and returns outcomes sorted by name", func() {
		query := newFakeQuery(twoRemotes())
		eng := engine.New(testConfig(), query)

		rep, err := eng.Update(ctx, reg, engine.UpdateOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(rep.Changed).To(BeTrue())
		Expect(rep.Registry.Names()).To(Equal([]string{"org/a", "org/b"}))
		Expect(rep.Registry.Records[0].Version).To(Equal("aaa0002"))
		Expect(rep.Registry.Records[1].Version).To(Equal("bbb0009"))
		Expect(rep.Outcomes[0].Branch).To(Equal("origin/main"))
		Expect(rep.Outcomes[0].Kind).To(Equal(model.OutcomeAdvanced))
	})

	It("keeps a pin whose candidate is an ancestor", func() {
		remotes := twoRemotes()
		remotes["org/a"].ancestors = map[string]bool{"aaa0002..aaa0001": true}
		eng := engine.New(testConfig(), newFakeQuery(remotes))

		rep, err := eng.Update(ctx, reg, engine.UpdateOptions{Only: []string{"org/a"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(rep.Registry.Find("org/a").Version).To(Equal("aaa0001"))
		// reordering alone counts as a change
		Expect(rep.Changed).To(BeTrue())
	})

	It("skips records outside the selection without cloning them", func() {
		query := newFakeQuery(twoRemotes())
		eng := engine.New(testConfig(), query)

		var seen []model.Outcome
		rep, err := eng.Update(ctx, reg, engine.UpdateOptions{
			Only:      []string{"org/a"},
			OnOutcome: func(o model.Outcome) { seen = append(seen, o) },
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(query.cloned()).To(Equal([]string{"org/a"}))
		Expect(rep.Registry.Find("org/b").Version).To(Equal("HEAD"))
		Expect(seen).To(HaveLen(2))
		Expect(seen[0].Kind).To(Equal(model.OutcomeSkipped))
	})

	It("reports selection patterns that match no record", func() {
		query := newFakeQuery(twoRemotes())
		eng := engine.New(testConfig(), query)

		rep, err := eng.Update(ctx, reg, engine.UpdateOptions{Only: []string{"org/a", "typo/name"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(rep.Unmatched).To(Equal([]string{"typo/name"}))
		Expect(query.cloned()).To(Equal([]string{"org/a"}))

		rep, err = eng.Update(ctx, reg, engine.UpdateOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(rep.Unmatched).To(BeEmpty())
	})

	It("selects records with a glob", func() {
		query := newFakeQuery(twoRemotes())
		eng := engine.New(testConfig(), query)

		_, err := eng.Update(ctx, reg, engine.UpdateOptions{Only: []string{"org/*"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(query.cloned()).To(ConsistOf("org/a", "org/b"))
	})

	It("rejects an invalid selector", func() {
		eng := engine.New(testConfig(), newFakeQuery(twoRemotes()))
		_, err := eng.Update(ctx, reg, engine.UpdateOptions{Only: []string{"org/[a"}})
		Expect(err).To(HaveOccurred())
	})

	It("fails the whole pass on an orphaned pin", func() {
		remotes := twoRemotes()
		remotes["org/a"].branches = nil
		eng := engine.New(testConfig(), newFakeQuery(remotes))

		rep, err := eng.Update(ctx, reg, engine.UpdateOptions{})
		Expect(rep).To(BeNil())
		Expect(errors.Is(err, resolve.ErrOrphanedRevision)).To(BeTrue())
		Expect(err.Error()).To(Equal("orphaned commit org/a"))
	})

	It("wraps clone failures with the repository name", func() {
		remotes := twoRemotes()
		remotes["org/b"].cloneErr = gitx.ErrRemoteUnavailable
		eng := engine.New(testConfig(), newFakeQuery(remotes))

		_, err := eng.Update(ctx, reg, engine.UpdateOptions{})
		Expect(err).To(MatchError(gitx.ErrRemoteUnavailable))
		Expect(err.Error()).To(HavePrefix("org/b: "))
	})

	It("produces the same result concurrently", func() {
		records := make([]model.RepoRecord, 0, 12)
		remotes := map[string]*fakeRemote{}
		for _, n := range []string{"k", "c", "h", "a", "l", "b", "j", "d", "i", "f", "e", "g"} {
			name := "org/" + n
			records = append(records, model.RepoRecord{Name: name, Version: "HEAD"})
			remotes[name] = &fakeRemote{
				branches: map[string][]string{"HEAD": {"origin/main"}},
				latest:   n + "000001",
			}
		}
		big := registry.New(records)

		seq, err := engine.New(testConfig(), newFakeQuery(remotes)).Update(ctx, big, engine.UpdateOptions{Concurrency: 1})
		Expect(err).NotTo(HaveOccurred())

		var mu sync.Mutex
		count := 0
		par, err := engine.New(testConfig(), newFakeQuery(remotes)).Update(ctx, big, engine.UpdateOptions{
			Concurrency: 4,
			OnOutcome: func(model.Outcome) {
				mu.Lock()
				count++
				mu.Unlock()
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(par.Registry.Records).To(Equal(seq.Registry.Records))
		Expect(par.Outcomes).To(Equal(seq.Outcomes))
		Expect(count).To(Equal(12))
	})

	It("cancels remaining work after the first concurrent failure", func() {
		remotes := map[string]*fakeRemote{
			"org/a": {cloneErr: gitx.ErrRemoteUnavailable},
			"org/b": {block: true},
		}
		eng := engine.New(testConfig(), newFakeQuery(remotes))

		done := make(chan error, 1)
		go func() {
			_, err := eng.Update(ctx, reg, engine.UpdateOptions{Concurrency: 2})
			done <- err
		}()
		Eventually(done, 5*time.Second).Should(Receive(MatchError(gitx.ErrRemoteUnavailable)))
	})

	It("applies the per-repository timeout", func() {
		remotes := twoRemotes()
		remotes["org/a"].block = true
		eng := engine.New(testConfig(), newFakeQuery(remotes))

		_, err := eng.Update(ctx, reg, engine.UpdateOptions{Timeout: 1, Only: []string{"org/a"}})
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
	})

	It("cleans up every workspace", func() {
		base := GinkgoT().TempDir()
		eng := engine.New(testConfig(), newFakeQuery(twoRemotes()))
		_, err := eng.Update(ctx, reg, engine.UpdateOptions{WorkspaceBase: base})
		Expect(err).NotTo(HaveOccurred())
		entries, err := os.ReadDir(base)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("errors without a registry", func() {
		_, err := engine.New(nil, newFakeQuery(nil)).Update(ctx, nil, engine.UpdateOptions{})
		Expect(err).To(MatchError("registry not loaded"))
	})

	Describe("Run", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "pins.go")
			Expect(os.WriteFile(path, []byte(hostFile), 0o640)).To(Succeed())
		})

		It("rewrites the block and preserves everything else", func() {
			eng := engine.New(testConfig(), newFakeQuery(twoRemotes()))
			rep, err := eng.Run(ctx, engine.RunOptions{SourcePath: path})
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Changed).To(BeTrue())
			Expect(rep.Written).To(BeTrue())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`{Name: "org/a", Version: "aaa0002", WatchedPaths: []string{"src"}},`))
			Expect(string(data)).To(ContainSubstring(`{Name: "org/b", Version: "bbb0009", WatchedPaths: nil},`))
			Expect(string(data)).To(HavePrefix("package pins\n"))
			Expect(string(data)).To(HaveSuffix("// END\n\nfunc keep() {}\n"))

			info, err := os.Stat(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o640)))
		})

		It("is idempotent on a second pass", func() {
			remotes := twoRemotes()
			remotes["org/a"].branches["aaa0002"] = []string{"origin/main"}
			remotes["org/b"].branches["bbb0009"] = []string{"origin/main"}
			eng := engine.New(testConfig(), newFakeQuery(remotes))

			_, err := eng.Run(ctx, engine.RunOptions{SourcePath: path})
			Expect(err).NotTo(HaveOccurred())
			first, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())

			rep, err := eng.Run(ctx, engine.RunOptions{SourcePath: path})
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Changed).To(BeFalse())
			Expect(rep.Written).To(BeFalse())
			second, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("does not write on a dry run", func() {
			eng := engine.New(testConfig(), newFakeQuery(twoRemotes()))
			rep, err := eng.Run(ctx, engine.RunOptions{SourcePath: path, DryRun: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Changed).To(BeTrue())
			Expect(rep.Written).To(BeFalse())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(hostFile))
		})

		It("leaves the file untouched when a pin is orphaned", func() {
			remotes := twoRemotes()
			remotes["org/a"].branches = nil
			eng := engine.New(testConfig(), newFakeQuery(remotes))

			_, err := eng.Run(ctx, engine.RunOptions{SourcePath: path})
			Expect(err).To(MatchError(resolve.ErrOrphanedRevision))

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(hostFile))
		})

		It("stamps the report with the injected clock", func() {
			stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			eng := engine.New(testConfig(), newFakeQuery(twoRemotes()))
			rep, err := eng.Run(ctx, engine.RunOptions{SourcePath: path, DryRun: true, Now: func() time.Time { return stamp }})
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.GeneratedAt).To(Equal(stamp))
			Expect(rep.Source).To(Equal(path))
		})

		It("requires a source path", func() {
			_, err := engine.New(testConfig(), newFakeQuery(nil)).Run(ctx, engine.RunOptions{})
			Expect(err).To(MatchError("source file not set"))
		})
	})
})
