// Command authbridge-smoke walks the full operation catalog of the auth
// facade against the local bridge and prints a step-by-step trace plus final
// metrics. It is a development aid: run it after changes to confirm the
// facade, the bridge, and the state plumbing still agree end to end.
//
// By default it runs against an embedded miniredis; point it at a real Redis
// with -redis-addr or REDIS_ADDR.
//
// Run:
//
//	go run ./cmd/authbridge-smoke
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Codeseer/authbridge"
	"github.com/Codeseer/authbridge/localbridge"
	"github.com/Codeseer/authbridge/provider"
)

func main() {
	var (
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix    = flag.String("prefix", "smoke", "redis key prefix")
		verbose   = flag.Bool("audit", false, "stream audit events to stderr")
	)
	flag.Parse()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fatal("miniredis: %v", err)
		}
		addr = mr.Addr()
		cleanup = mr.Close
		fmt.Println("using embedded miniredis at", addr)
	}
	if cleanup != nil {
		defer cleanup()
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	bridge, err := localbridge.New(rdb, localbridge.Config{
		RedisPrefix: *prefix,
		SigningKey:  []byte("authbridge-smoke-signing-key"),
	})
	if err != nil {
		fatal("bridge init: %v", err)
	}

	cfg := authbridge.Config{
		App: authbridge.AppConfig{Name: "smoke"},
		Audit: authbridge.AuditConfig{
			Enabled:    *verbose,
			BufferSize: 256,
			DropIfFull: false,
		},
		Metrics: authbridge.MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}

	builder := authbridge.New().WithConfig(cfg).WithBridge(bridge)
	if *verbose {
		builder = builder.WithAuditSink(authbridge.NewJSONWriterSink(os.Stderr))
	}
	client, err := builder.Build()
	if err != nil {
		fatal("client build: %v", err)
	}
	defer client.Close()

	transitions := 0
	client.OnAuthStateChanged(func(u *authbridge.User) {
		transitions++
	})

	ctx := context.Background()

	// ---------- account lifecycle ----------
	step("create account")
	u, err := client.CreateUserWithEmailAndPassword(ctx, "smoke@example.com", "correct-horse")
	must(err)
	fmt.Println("  uid:", u.UID())

	step("update profile")
	name := "Smoke Tester"
	must(u.UpdateProfile(ctx, authbridge.ProfileUpdate{DisplayName: &name}))

	step("fetch id token")
	res, err := u.IDTokenResult(ctx, false)
	must(err)
	fmt.Println("  subject:", res.Subject, "provider:", res.SignInProvider)

	step("email verification round trip")
	must(u.SendEmailVerification(ctx))
	vt, err := bridge.EmailVerificationToken(ctx, "", u.UID())
	must(err)
	must(bridge.ConfirmEmailVerification(ctx, "", u.UID(), vt))
	must(u.Reload(ctx))
	fmt.Println("  verified:", u.EmailVerified())

	step("link oauth credential")
	must(u.LinkWithCredential(ctx, provider.Google("smoke-google-id-token", "smoke-google-access")))
	fmt.Println("  providers:", len(u.ProviderData()))

	step("unlink oauth credential")
	must(u.UnlinkProvider(ctx, provider.IDGoogle))

	step("reauthenticate + change password")
	must(u.Reauthenticate(ctx, provider.EmailPassword("smoke@example.com", "correct-horse")))
	must(u.UpdatePassword(ctx, "battery-staple"))

	step("sign out")
	must(client.SignOut(ctx))
	if client.CurrentUser() != nil {
		fatal("expected no current user after sign-out")
	}

	step("sign back in with new password")
	u, err = client.SignInWithEmailAndPassword(ctx, "smoke@example.com", "battery-staple")
	must(err)

	step("password reset round trip")
	must(client.SignOut(ctx))
	must(client.SendPasswordResetEmail(ctx, "smoke@example.com"))
	rt, err := bridge.PasswordResetToken(ctx, "", "smoke@example.com")
	must(err)
	must(bridge.ConfirmPasswordReset(ctx, "", "smoke@example.com", rt, "correct-horse"))
	u, err = client.SignInWithEmailAndPassword(ctx, "smoke@example.com", "correct-horse")
	must(err)

	step("anonymous account upgrade")
	must(client.SignOut(ctx))
	anon, err := client.SignInAnonymously(ctx)
	must(err)
	must(anon.LinkWithCredential(ctx, provider.EmailPassword("upgraded@example.com", "correct-horse")))
	fmt.Println("  upgraded uid:", anon.UID(), "anonymous:", anon.IsAnonymous())

	step("custom token sign-in")
	must(client.SignOut(ctx))
	ct, err := bridge.MintCustomToken("backend-user-1")
	must(err)
	_, err = client.SignInWithCustomToken(ctx, ct)
	must(err)

	step("delete account")
	must(client.CurrentUser().Delete(ctx))

	// ---------- report ----------
	fmt.Println()
	fmt.Println("state transitions observed:", transitions)
	snap := client.MetricsSnapshot()
	fmt.Println("sign-ins:", snap.Counters[authbridge.MetricSignInSuccess],
		"sign-outs:", snap.Counters[authbridge.MetricSignOut],
		"state events:", snap.Counters[authbridge.MetricStateEvents])
	fmt.Println("audit dropped:", client.AuditDropped())
	fmt.Println("ok")
}

func step(name string) {
	fmt.Println("==>", name)
}

func must(err error) {
	if err != nil {
		fatal("%v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
