package engine_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/metaheur/internal/engine"
	"github.com/san-kum/metaheur/internal/rng"
)

var _ = Describe("Ensemble", func() {
	It("gives replicate i the i-th spawned generator", func() {
		exec := engine.New[int, digits, trace]()
		exec.AddTerminator(atLeast(3))

		results, err := engine.NewEnsemble(exec, 4).WithWorkers(2).Run(context.Background(), &counter{}, constant{}, rng.New(9))
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		children, err := rng.New(9).Spawn(4)
		Expect(err).NotTo(HaveOccurred())
		for i, r := range results {
			single, err := exec.Execute(context.Background(), &counter{}, constant{}, children[i], nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(r).To(Equal(single))
		}
	})

	It("fails as a whole when a replicate fails", func() {
		exec := engine.New[int, digits, trace]()
		exec.AddTerminator(atLeast(5))
		_, err := engine.NewEnsemble(exec, 3).Run(context.Background(), &counter{failAt: 2}, constant{}, rng.New(1))
		Expect(err).To(HaveOccurred())
	})

	It("rejects an empty ensemble", func() {
		exec := engine.New[int, digits, trace]()
		_, err := engine.NewEnsemble(exec, 0).Run(context.Background(), &counter{}, constant{}, rng.New(1))
		Expect(err).To(MatchError(rng.ErrInvalidArgument))
	})
})
