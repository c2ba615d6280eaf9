// Command mnistseq builds a synthetic dataset of digit-sequence images from
// the MNIST database and writes it as a NumPy .npz archive.
package main

func main() {
	Execute()
}
