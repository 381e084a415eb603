package redis

import (
	"context"
	"testing"

	"github.com/athukorala/storefront-api/pkg/config"
)

func TestKeyBuilders(t *testing.T) {
	client := &Client{}

	cases := map[string]string{
		client.CartKey("s1"):         "athukorala:cart:s1",
		client.PaymentDraftKey("s1"): "athukorala:payment-draft:s1",
		client.LastOrderKey("s1"):    "athukorala:last-order:s1",
		client.FeedbackKey("s1"):     "athukorala:checkout-feedback:s1",
		client.SessionKey("s1"):      "athukorala:session:s1",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestKeyBuilderSkipsBlankParts(t *testing.T) {
	client := &Client{}
	if got := client.CartKey(""); got != "athukorala:cart" {
		t.Fatalf("blank session should collapse, got %q", got)
	}
}

func TestOptionsFromConfigRequiresOrigin(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:      "redis://localhost:6379/2",
		PoolSize: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("expected db 2, got %d", opts.DB)
	}
	if opts.PoolSize != 5 {
		t.Fatalf("pool size fallback not applied, got %d", opts.PoolSize)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if _, err := client.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := client.Set(context.Background(), "k", "v", 0); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}
