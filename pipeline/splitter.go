package pipeline

// NewTextChannelSplitter copies every input text to n output channels, one
// per configuration. Copies stay sequential so each consumer sees the
// request's text order.
func NewTextChannelSplitter(n int) func(in <-chan string) []chan string {
	return func(in <-chan string) []chan string {
		outs := make([]chan string, n)
		for i := 0; i < n; i++ {
			outs[i] = make(chan string)
		}

		go func() {
			defer closeAllChannels(outs)
			for text := range in {
				for _, out := range outs {
					out <- text
				}
			}
		}()
		return outs
	}
}

func closeAllChannels(outs []chan string) {
	for _, out := range outs {
		close(out)
	}
}
