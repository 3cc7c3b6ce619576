package engine

import (
	"math/rand"
	"sort"

	"github.com/piwi3910/cargoplan/internal/model"
)

// GeneticConfig holds parameters for the ordering search.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
	Seed           int64
}

// DefaultGeneticConfig returns default search parameters. The fixed seed keeps
// the search reproducible for the same input.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 30,
		Generations:    40,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
		Seed:           42,
	}
}

// chromosome is a candidate placement sequence.
type chromosome struct {
	genes   []gene
	fitness float64
}

// geneticSearch evolves placement sequences; every candidate is decoded by
// the regular placement loop, so all placement rules hold for the winner.
type geneticSearch struct {
	settings  model.PackSettings
	config    GeneticConfig
	pieces    []model.CargoPiece
	container model.ContainerSpec
	rng       *rand.Rand
}

func newGeneticSearch(settings model.PackSettings, config GeneticConfig, pieces []model.CargoPiece, container model.ContainerSpec) *geneticSearch {
	return &geneticSearch{
		settings:  settings,
		config:    config,
		pieces:    pieces,
		container: container,
		rng:       rand.New(rand.NewSource(config.Seed)),
	}
}

// sizedConfig scales the default search down for large manifests.
func sizedConfig(n int) GeneticConfig {
	config := DefaultGeneticConfig()
	if n > 50 {
		config.Generations = 25
	}
	if n > 150 {
		config.PopulationSize = 20
		config.Generations = 15
	}
	return config
}

// searchGenetic returns the best sequence found. It is seeded with the greedy
// sequence and keeps elites, so it never scores below the greedy order.
func searchGenetic(settings model.PackSettings, config GeneticConfig, pieces []model.CargoPiece, container model.ContainerSpec) []gene {
	greedy := greedySequence(pieces)
	if len(pieces) < 2 {
		return greedy
	}

	ga := newGeneticSearch(settings, config, pieces, container)
	return ga.run(greedy).genes
}

func (g *geneticSearch) run(seed []gene) chromosome {
	population := g.initPopulation(seed)
	for i := range population {
		population[i].fitness = g.evaluate(population[i])
	}

	for gen := 0; gen < g.config.Generations; gen++ {
		g.rank(population)

		next := make([]chromosome, 0, g.config.PopulationSize)
		elites := g.config.EliteCount
		if elites > len(population) {
			elites = len(population)
		}
		for i := 0; i < elites; i++ {
			next = append(next, g.copyChromosome(population[i]))
		}

		for len(next) < g.config.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)
			child := g.orderCrossover(parent1, parent2)
			g.mutate(&child)
			child.fitness = g.evaluate(child)
			next = append(next, child)
		}
		population = next
	}

	g.rank(population)
	return population[0]
}

// rank sorts by fitness descending. Ties keep their position, so the greedy
// seed wins when nothing beats it.
func (g *geneticSearch) rank(population []chromosome) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
}

func (g *geneticSearch) initPopulation(seed []gene) []chromosome {
	n := len(g.pieces)
	population := make([]chromosome, g.config.PopulationSize)
	population[0] = chromosome{genes: append([]gene(nil), seed...)}

	for i := 1; i < len(population); i++ {
		genes := make([]gene, n)
		for j, idx := range g.rng.Perm(n) {
			genes[j] = gene{piece: idx, lead: g.rng.Intn(len(g.pieces[idx].Orientations))}
		}
		population[i] = chromosome{genes: genes}
	}
	return population
}

// evaluate scores a sequence by the share of weight and volume it loads,
// with a small bonus for a balanced load.
func (g *geneticSearch) evaluate(c chromosome) float64 {
	placed, _ := placeSequence(g.settings, g.pieces, c.genes, g.container)

	var totalWeight, placedWeight float64
	for _, p := range g.pieces {
		totalWeight += p.Weight
	}
	var volume float64
	for _, p := range placed {
		placedWeight += p.Weight
		volume += p.Dimensions.Volume()
	}
	if totalWeight == 0 {
		return 0
	}

	cog := CenterOfGravity(placed, g.container)
	stability := StabilityScore(cog, g.container) / 100

	return 0.6*placedWeight/totalWeight + 0.3*volume/g.container.Volume() + 0.1*stability
}

func (g *geneticSearch) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return g.copyChromosome(best)
}

// orderCrossover implements OX1: a segment from parent1, the rest in parent2's order.
func (g *geneticSearch) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.genes)
	if n <= 2 {
		return g.copyChromosome(parent1)
	}

	point1 := g.rng.Intn(n)
	point2 := g.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{genes: make([]gene, n)}
	inSegment := make(map[int]bool, point2-point1+1)
	for i := point1; i <= point2; i++ {
		child.genes[i] = parent1.genes[i]
		inSegment[parent1.genes[i].piece] = true
	}

	childIdx := (point2 + 1) % n
	for _, pg := range parent2.genes {
		if !inSegment[pg.piece] {
			child.genes[childIdx] = pg
			childIdx = (childIdx + 1) % n
		}
	}
	return child
}

func (g *geneticSearch) mutate(c *chromosome) {
	n := len(c.genes)
	if n < 2 {
		return
	}

	// Swap two positions
	if g.rng.Float64() < g.config.MutationRate {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
	}

	// Change which orientation is tried first
	if g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		if k := len(g.pieces[c.genes[i].piece].Orientations); k > 1 {
			c.genes[i].lead = g.rng.Intn(k)
		}
	}

	// Reverse a segment
	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for i < j {
			c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
			i++
			j--
		}
	}
}

func (g *geneticSearch) copyChromosome(c chromosome) chromosome {
	genes := make([]gene, len(c.genes))
	copy(genes, c.genes)
	return chromosome{genes: genes, fitness: c.fitness}
}
