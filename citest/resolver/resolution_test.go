package resolver_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rig-run/rig/internal/builtin"
	"github.com/rig-run/rig/internal/config"
	"github.com/rig-run/rig/internal/inject"
	"github.com/rig-run/rig/internal/resolve"
	"github.com/rig-run/rig/internal/tap"
	"github.com/rig-run/rig/internal/task"
)

// End-to-end resolution through the real registry, config store, tap
// loader, and injector, the way the CLI dispatcher wires them.
var _ = Describe("Command resolution", func() {
	var (
		workDir  string
		store    *config.Store
		registry *task.Registry
		resolver *resolve.Resolver
	)

	confirm := func(string) bool { return true }

	newCall := func(inv *resolve.Invocation, out *bytes.Buffer) *task.Call {
		return &task.Call{
			Command:    inv.Command,
			Params:     inv.Params.Values,
			Positional: inv.Params.Positional,
			RawOptions: inv.Options,
			Link:       inv.Link,
			Env:        inv.Env,
			Stdout:     out,
		}
	}

	BeforeEach(func() {
		workDir = GinkgoT().TempDir()
		store = config.NewStore(filepath.Join(workDir, "rig.json"))
		registry = builtin.DefaultRegistry(builtin.Deps{Store: store, Confirm: confirm})
		resolver = resolve.New(store, registry, resolve.InjectorFunc(inject.Inject))
	})

	linkTap := func(name, repo string) {
		link, err := tap.Register(store, false, name, repo, confirm)
		Expect(err).NotTo(HaveOccurred())
		Expect(tap.AddLink(store, link)).To(Succeed())
	}

	Describe("direct built-in lookup", func() {
		It("resolves a built-in without touching the tap path", func() {
			inv, err := resolver.Resolve(context.Background(), "list", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv).NotTo(BeNil())
			Expect(inv.Task.Name).To(Equal("list"))
			Expect(inv.Options).To(BeEmpty())
			Expect(inv.InjectedTap).To(BeEmpty())
		})

		It("reports unknown commands as unresolved", func() {
			inv, err := resolver.Resolve(context.Background(), "nonsense", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv).To(BeNil())

			_, ok := resolve.Validate(inv, false)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("tap rerouting", func() {
		var repo string

		BeforeEach(func() {
			repo = GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(repo, ".env"),
				[]byte("TAP_REGION=eu-west\n"), 0644)).To(Succeed())
			linkTap("mytap", repo)
		})

		It("reroutes to the generic handler with the tap bound", func() {
			inv, err := resolver.Resolve(context.Background(), "mytap", []string{"--verbose"})
			Expect(err).NotTo(HaveOccurred())

			Expect(inv.Task.Name).To(Equal("tap"))
			Expect(inv.Params.Values["tap"]).To(Equal("mytap"))
			Expect(inv.Options).To(Equal([]string{"--verbose", "tap=mytap"}))
			Expect(inv.Env).To(HaveKeyWithValue("TAP_REGION", "eu-west"))
		})

		It("executes a forwarded command inside the tap repository", func() {
			inv, err := resolver.Resolve(context.Background(), "mytap", []string{"echo $TAP_REGION"})
			Expect(err).NotTo(HaveOccurred())

			var out bytes.Buffer
			call := newCall(inv, &out)
			Expect(inv.Task.Action(context.Background(), call)).To(Succeed())
			Expect(out.String()).To(ContainSubstring("eu-west"))
		})

		It("keeps a trailing help token as the last raw option", func() {
			inv, err := resolver.Resolve(context.Background(), "mytap", []string{"--verbose", "--help"})
			Expect(err).NotTo(HaveOccurred())

			Expect(inv.Options).To(Equal([]string{"--verbose", "tap=mytap", "--help"}))
			Expect(inv.HelpRequested).To(BeTrue())
		})
	})

	Describe("taps with custom task modules", func() {
		var repo string

		BeforeEach(func() {
			repo = GinkgoT().TempDir()
			tasksDir := filepath.Join(repo, "tasks")
			Expect(os.MkdirAll(tasksDir, 0755)).To(Succeed())

			module := `
				module.exports = function (ctx) {
					return {
						tap: {
							description: "handler for " + ctx.command,
							inject: false,
							action: function (call) {
								return "custom handler ran for " + call.params.tap;
							},
						},
					};
				};
			`
			Expect(os.WriteFile(filepath.Join(tasksDir, "index.js"),
				[]byte(module), 0644)).To(Succeed())
			linkTap("mytap", repo)
		})

		It("merges custom tasks over the built-ins and runs them", func() {
			inv, err := resolver.Resolve(context.Background(), "mytap", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Task.Description).To(Equal("handler for mytap"))

			var out bytes.Buffer
			call := newCall(inv, &out)
			Expect(inv.Task.Action(context.Background(), call)).To(Succeed())
			Expect(out.String()).To(ContainSubstring("custom handler ran for mytap"))
		})
	})

	Describe("malformed tap modules", func() {
		It("fails resolution and leaves the config untouched", func() {
			repo := GinkgoT().TempDir()
			tasksDir := filepath.Join(repo, "tasks")
			Expect(os.MkdirAll(tasksDir, 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(tasksDir, "index.js"),
				[]byte(`throw new Error("broken")`), 0644)).To(Succeed())
			linkTap("broken", repo)

			before, err := os.ReadFile(store.Path())
			Expect(err).NotTo(HaveOccurred())

			_, err = resolver.Resolve(context.Background(), "broken", nil)
			Expect(err).To(MatchError(tap.ErrTapLoad))

			after, err := os.ReadFile(store.Path())
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(Equal(before))
		})
	})
})
