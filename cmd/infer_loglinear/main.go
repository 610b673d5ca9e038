package main

import "flag"
import "fmt"
import "io"
import "os"

import "github.com/pkg/errors"

import "github.com/neurlang/logformula/datasets/sqlstore"
import "github.com/neurlang/logformula/datasets/textfile"
import "github.com/neurlang/logformula/formula"
import "github.com/neurlang/logformula/logmath"
import "github.com/neurlang/logformula/paramindex"
import "github.com/neurlang/logformula/semiring"
import "github.com/neurlang/logformula/trainer"

// pruned resolves features through the model, reading names outside the
// support filter or the alphabet as the constant zero.
type pruned struct {
	m       *formula.Model
	support []byte
}

func (p pruned) Resolve(name string) (formula.Node, error) {
	if p.support != nil && !paramindex.InSupport(p.support, name) {
		return formula.Const(0), nil
	}
	n, err := p.m.Resolve(name)
	if errors.Is(err, formula.ErrUnknownFeature) {
		return formula.Const(0), nil
	}
	return n, err
}

func (p pruned) ResolveID(id int) (formula.Node, error) {
	return p.m.ResolveID(id)
}

func main() {
	examples := flag.String("examples", "", "SQLite example store")
	corpus := flag.String("corpus", "", "text corpus, one expression per line")
	alphabet := flag.String("alphabet", "alphabet.txt", "feature names file")
	dstmodel := flag.String("dstmodel", "model", "checkpoint prefix; the newest checkpoint is used")
	useSupport := flag.Bool("support", true, "skip features outside <dstmodel>.support")
	flag.Parse()

	index, err := paramindex.Load(*alphabet)
	if err != nil {
		println(err.Error())
		os.Exit(1)
	}
	model := formula.NewModel(index)
	model.Freeze()

	checkpoints := &trainer.Checkpointer{Prefix: *dstmodel}
	iteration, params, err := trainer.Resume(checkpoints)
	if err != nil {
		println(err.Error())
		os.Exit(1)
	}
	if len(params) != model.Len() {
		println("checkpoint has", len(params), "weights for", model.Len(), "features")
		os.Exit(1)
	}
	model.SetWeights(params)

	var resolver = pruned{m: model}
	if *useSupport {
		if resolver.support, err = os.ReadFile(*dstmodel + ".support"); err != nil {
			println(err.Error())
			os.Exit(1)
		}
	}

	var provider formula.Provider
	switch {
	case *examples != "":
		store, err := sqlstore.New(*examples, resolver)
		if err != nil {
			println(err.Error())
			os.Exit(1)
		}
		defer store.Close()
		provider = store
	case *corpus != "":
		provider = textfile.New(*corpus, resolver)
	default:
		println("one of -examples or -corpus is required")
		os.Exit(1)
	}

	fmt.Printf("# checkpoint %s\n", checkpoints.Path(iteration))
	total, err := score(model, provider, os.Stdout)
	if err != nil {
		println(err.Error())
		os.Exit(1)
	}
	fmt.Printf("# total %s\n", total)
}

// score prints one line per example: its position, value and best derivation.
// It returns the sum of all values.
func score(m *formula.Model, p formula.Provider, w io.Writer) (logmath.Scalar, error) {
	var total = logmath.Zero()
	cursor, err := p.Open()
	if err != nil {
		return total, err
	}
	defer cursor.Close()

	best := semiring.MaxPathSemiring(semiring.LogMaxTimes())
	for i := 0; ; i++ {
		example, err := cursor.Next()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		m.BeginPass()
		value, err := m.Evaluate(example)
		if err != nil {
			return total, errors.Wrapf(err, "example %d", i)
		}
		total.SetPlus(total, value)

		path, err := formula.EvaluateIn(example, best, func(n formula.Node) (semiring.Scored, error) {
			v, err := m.Evaluate(n)
			if err != nil {
				return semiring.Scored{}, err
			}
			if v.Negative && !v.IsZero() {
				return semiring.Scored{}, errors.Errorf("negative factor %s", formula.Format(n, m))
			}
			return semiring.Scored{Score: v.Log, Path: semiring.Path{formula.Format(n, m)}}, nil
		})
		if err != nil {
			fmt.Fprintf(w, "%d\t%g\t-\n", i, value.Exp())
			continue
		}
		fmt.Fprintf(w, "%d\t%g\t%s\n", i, value.Exp(), path.Path)
	}
}
