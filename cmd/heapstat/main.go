// Command heapstat drives a synthetic allocate/free/reallocate workload
// against package heap and reports the resulting arena statistics. It
// exists to exercise the allocator end to end outside of a test binary.
package main

func main() {
	execute()
}
