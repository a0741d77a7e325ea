//go:build llama

package backend

// cgo link directives for the in-process llama adapter.
//   - rpath $ORIGIN lets the loader find libllama.so and libggml*.so next to
//     the built binary (./bin).
//   - -L${SRCDIR}/../../bin finds libllama.so at link time.
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"
