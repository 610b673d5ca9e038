package main

import "flag"
import "io"
import "os"

import "github.com/google/uuid"
import "github.com/klauspost/cpuid/v2"
import "github.com/pkg/errors"

import "github.com/neurlang/logformula/datasets/sqlstore"
import "github.com/neurlang/logformula/datasets/textfile"
import "github.com/neurlang/logformula/formula"
import "github.com/neurlang/logformula/learning"
import "github.com/neurlang/logformula/paramindex"
import "github.com/neurlang/logformula/trainer"

func main() {
	examples := flag.String("examples", "", "SQLite example store")
	corpus := flag.String("corpus", "", "text corpus, one expression per line (.lzw for compressed); imported into -examples when that store is empty")
	alphabet := flag.String("alphabet", "alphabet.txt", "feature names file, read if present and rewritten")
	dstmodel := flag.String("dstmodel", "model", "checkpoint prefix")
	resume := flag.Bool("resume", false, "resume from the newest checkpoint")
	maxiter := flag.Int("maxiter", 2000, "iteration cap")
	savek := flag.Int("savek", 10, "checkpoint every k iterations")
	lambda := flag.Float64("lambda", 1, "L2 regularization strength")
	initial := flag.Float64("init", 0, "initial weight")
	stepperName := flag.String("stepper", "lbfgs", "lbfgs or sga")
	aggregate := flag.String("aggregate", "sum", "combine examples by sum or product")
	logfile := flag.String("log", "", "append progress to this file instead of stderr")
	flag.Parse()

	var h learning.HyperParameters
	if *logfile != "" {
		if err := h.SetLogger(*logfile); err != nil {
			println(err.Error())
			os.Exit(1)
		}
	}
	l := h.Logger()
	l.SetPrefix(uuid.New().String() + " ")
	l.Printf("cpu %s, %d cores, avx2 %v, fma3 %v", cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores,
		cpuid.CPU.Supports(cpuid.AVX2), cpuid.CPU.Supports(cpuid.FMA3))

	err := train(&h, options{
		examples:  *examples,
		corpus:    *corpus,
		alphabet:  *alphabet,
		dstmodel:  *dstmodel,
		resume:    *resume,
		maxiter:   *maxiter,
		savek:     *savek,
		lambda:    *lambda,
		initial:   *initial,
		stepper:   *stepperName,
		aggregate: *aggregate,
	})
	if err != nil {
		l.Println(err)
		os.Exit(1)
	}
}

type options struct {
	examples, corpus, alphabet, dstmodel string

	resume         bool
	maxiter, savek int
	lambda         float64
	initial        float64

	stepper, aggregate string
}

func train(h *learning.HyperParameters, o options) error {
	l := h.Logger()

	index := paramindex.New(1 << 16)
	if _, err := os.Stat(o.alphabet); err == nil {
		if index, err = paramindex.Load(o.alphabet); err != nil {
			return err
		}
	}
	model := formula.NewModel(index)

	var provider formula.Provider
	switch {
	case o.examples != "":
		store, err := sqlstore.New(o.examples, model)
		if err != nil {
			return err
		}
		defer store.Close()
		if o.corpus != "" {
			n, err := store.Count()
			if err != nil {
				return err
			}
			if n == 0 {
				if err := importCorpus(store, textfile.New(o.corpus, model)); err != nil {
					return err
				}
			} else {
				l.Printf("%s already holds %d examples, not importing %s", o.examples, n, o.corpus)
			}
		}
		provider = store
	case o.corpus != "":
		provider = textfile.New(o.corpus, model)
	default:
		return errors.New("one of -examples or -corpus is required")
	}

	count, err := prime(provider)
	if err != nil {
		return err
	}
	model.Grow()
	model.Freeze()
	if err := index.Save(o.alphabet); err != nil {
		return err
	}
	l.Printf("%d examples, %d features", count, model.Len())

	var op = formula.AggregateSum
	if o.aggregate == "product" {
		op = formula.AggregateProduct
	}
	var objective formula.Node = formula.NewNegate(formula.NewLog(formula.NewRoot(op, provider)))
	if o.lambda > 0 {
		objective = formula.Plus().Combine(objective, formula.L2(model, o.lambda))
	}

	checkpoints, err := trainer.NewCheckpointer(o.dstmodel)
	if err != nil {
		return err
	}
	var settings = trainer.Settings{MaxIterations: o.maxiter, SaveEveryK: o.savek, Logger: l}
	var params = make([]float64, model.Len())
	for i := range params {
		params[i] = o.initial
	}
	if o.resume {
		iteration, saved, err := trainer.Resume(checkpoints)
		if err != nil {
			return err
		}
		copy(params, saved)
		settings.StartIteration = iteration
		l.Printf("resuming from iteration %d", iteration)
	}

	var stepper learning.Stepper = learning.NewLBFGS(h)
	if o.stepper == "sga" {
		stepper = learning.NewSGA(h)
	}

	res, err := trainer.Train(trainer.NewObjectiveFunc(model, objective), stepper, params, checkpoints, settings)
	if err != nil {
		return err
	}
	if res.StepperErr != nil {
		l.Printf("stopped early: %v", res.StepperErr)
	}
	l.Printf("objective %g after %d iterations (%v)", res.Value, res.Iterations, res.Status)

	support := index.Support(res.Params)
	return os.WriteFile(o.dstmodel+".support", support, 0666)
}

// prime streams every example once so the alphabet holds every feature
// before the weights are sized.
func prime(p formula.Provider) (count int, err error) {
	cursor, err := p.Open()
	if err != nil {
		return 0, err
	}
	defer cursor.Close()
	for {
		if _, err := cursor.Next(); err == io.EOF {
			return count, nil
		} else if err != nil {
			return count, errors.Wrapf(err, "example %d", count)
		}
		count++
	}
}

// importCorpus appends the expressions of a text corpus to the store.
func importCorpus(store *sqlstore.Store, corpus *textfile.File) error {
	cursor, err := corpus.Open()
	if err != nil {
		return err
	}
	defer cursor.Close()
	var batch []string
	for {
		n, err := cursor.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		batch = append(batch, formula.Format(n, corpus.Resolver.(formula.Namer)))
		if len(batch) == 4096 {
			if err := store.Append(batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return store.Append(batch...)
}
