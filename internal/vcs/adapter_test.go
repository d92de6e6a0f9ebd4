package vcs_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/pinkeeper/internal/vcs"
)

type runnerStub struct {
	responses map[string]struct {
		out string
		err error
	}
}

func (r *runnerStub) Run(_ context.Context, dir string, args ...string) (string, error) {
	key := dir + ":" + strings.Join(args, " ")
	if resp, ok := r.responses[key]; ok {
		return resp.out, resp.err
	}
	return "", errors.New("unexpected")
}

var _ = Describe("GitAdapter", func() {
	It("delegates all remote queries to gitx", func() {
		r := &runnerStub{responses: map[string]struct {
			out string
			err error
		}{
			"/ws:clone --no-checkout -q https://github.com/o/r .": {},
			"/ws:branch -r --contains abc":                        {out: "  origin/HEAD -> origin/main\n  origin/main"},
			"/ws:log -1 --format=%h origin/main -- src":           {out: "def"},
			"/ws:merge-base --is-ancestor def abc":                {},
		}}
		adapter := vcs.NewGitAdapter(r)
		ctx := context.Background()

		Expect(adapter.Name()).To(Equal("git"))
		url := adapter.RemoteURL("https://github.com", "o/r")
		Expect(url).To(Equal("https://github.com/o/r"))
		Expect(adapter.Clone(ctx, url, "/ws")).To(Succeed())

		branches, err := adapter.BranchesContaining(ctx, "/ws", "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(branches).To(HaveLen(2))

		rev, err := adapter.LatestRevisionTouching(ctx, "/ws", "origin/main", []string{"src"})
		Expect(err).NotTo(HaveOccurred())
		Expect(rev).To(Equal("def"))

		ok, err := adapter.IsAncestor(ctx, "/ws", "def", "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("defaults to the git CLI runner", func() {
		adapter := vcs.NewGitAdapter(nil)
		Expect(adapter.Runner).NotTo(BeNil())
	})

	It("satisfies RemoteQuery", func() {
		var _ vcs.RemoteQuery = vcs.NewGitAdapter(nil)
		var _ vcs.RemoteQuery = vcs.NewHgAdapter()
	})
})
