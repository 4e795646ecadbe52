package fetch

import (
	"context"
	"fmt"
	"time"
)

func ExampleClient() {
	cl := &Client{Config: Config{TrackOriginalContentLength: true}}
	defer cl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, body, err := cl.CtxDo(ctx, &Request{
		Method: "GET",
		URL:    "http://www.example.com/?a=b",
		Header: Header{
			{Name: "Accept", Value: "text/html"},
		},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(resp.Status)
	fmt.Println(len(body), resp.OriginalContentLength())
}

func ExampleFetcher() {
	loop, err := NewLoop(nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx, stop := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		loop.Run(ctx)
	}()
	defer func() {
		stop()
		<-stopped
		loop.Close()
	}()

	f := NewFetcher(loop, NewResolver(loop, nil, nil), Config{})
	done := make(chan struct{})
	_, err = f.Submit(&Request{URL: "http://www.example.com/"}, SinkFuncs{
		OnWrite: func(p []byte) error {
			fmt.Printf("%d bytes\n", len(p))
			return nil
		},
		OnDone: func(resp *Response, err error) {
			fmt.Println(resp.Status, err)
			close(done)
		},
	}, 5*time.Second)
	if err != nil {
		fmt.Println(err)
		return
	}
	<-done
}
