package trainer

// Resume loads the newest checkpoint of c, returning its iteration and
// parameters.
func Resume(c *Checkpointer) (iteration int, params []float64, err error) {
	iteration, path, err := c.Latest()
	if err != nil {
		return 0, nil, err
	}
	params, err = ReadCheckpoint(path)
	if err != nil {
		return 0, nil, err
	}
	c.last = iteration
	return iteration, params, nil
}
