package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcsvc "github.com/vladislavdragonenkov/storefront/internal/service/grpc"
	storefrontv1 "github.com/vladislavdragonenkov/storefront/proto/storefront/v1"
)

const (
	idempotencyHeader = grpcsvc.IdempotencyKeyHeader
	scenarioMethod    = "scenario"
)

type loadMode string

const (
	modePlace          loadMode = "place"
	modePlacePayFinish loadMode = "place-pay-finish"
)

type config struct {
	grpcAddr    string
	restURL     string
	carts       int
	stock       int64
	qty         int64
	priceMinor  int64
	concurrency int
	connections int
	timeout     time.Duration
	mode        loadMode
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Codes     map[string]int64 `json:"codes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

// stockReport — проверка того, что параллельные размещения не ушли в минус.
type stockReport struct {
	ProductID     string `json:"product_id"`
	Initial       int64  `json:"initial"`
	Final         int64  `json:"final"`
	UnitsPlaced   int64  `json:"units_placed"`
	Oversold      bool   `json:"oversold"`
	Inconsistency string `json:"inconsistency,omitempty"`
}

type report struct {
	StartedAt         time.Time               `json:"started_at"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	Placed            int64                   `json:"placed"`
	Insufficient      int64                   `json:"insufficient"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
	Stock             stockReport             `json:"stock"`
}

type methodStats struct {
	calls     int64
	success   int64
	failed    int64
	codes     map[string]int64
	latencies []float64
}

type collector struct {
	mu      sync.Mutex
	methods map[string]*methodStats
}

func newCollector() *collector {
	return &collector{
		methods: make(map[string]*methodStats),
	}
}

func (c *collector) record(method string, latency time.Duration, code codes.Code) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.methods[method]
	if !ok {
		stats = &methodStats{
			codes: make(map[string]int64),
		}
		c.methods[method] = stats
	}

	stats.calls++
	if code == codes.OK {
		stats.success++
	} else {
		stats.failed++
	}
	stats.codes[code.String()]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Methods:         make(map[string]methodReport, len(c.methods)),
	}

	for name, stats := range c.methods {
		codesCopy := make(map[string]int64, len(stats.codes))
		for code, count := range stats.codes {
			codesCopy[code] = count
		}
		result.Methods[name] = methodReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Codes:     codesCopy,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}

	// нехватка остатка — ожидаемый исход гонки, а не сбой сценария
	if scenario, ok := result.Methods[scenarioMethod]; ok {
		result.TotalScenarios = scenario.Calls
		result.Placed = scenario.Success
		result.Insufficient = scenario.Codes[codes.FailedPrecondition.String()]
		result.FailedScenarios = scenario.Failed - result.Insufficient
		result.ErrorRate = ratio(result.FailedScenarios, scenario.Calls)
		result.ScenarioLatencyMs = scenario.LatencyMs
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}

	return result
}

func parseConfig(args []string) (config, error) {
	var cfg config
	var modeValue string

	fs := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.grpcAddr, "addr", "localhost:50051", "gRPC target address")
	fs.StringVar(&cfg.restURL, "rest", "http://localhost:8080", "REST base URL used to prepare the product and carts")
	fs.IntVar(&cfg.carts, "carts", 200, "number of carts competing for the product")
	fs.Int64Var(&cfg.stock, "stock", 50, "initial stock of the contested product")
	fs.Int64Var(&cfg.qty, "qty", 1, "units of the product in every cart")
	fs.Int64Var(&cfg.priceMinor, "price-minor", 1000, "product price in minor units")
	fs.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	fs.IntVar(&cfg.connections, "connections", 8, "number of gRPC client connections")
	fs.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	fs.StringVar(&modeValue, "mode", string(modePlace), "load mode: place | place-pay-finish")
	fs.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode
	cfg.restURL = strings.TrimRight(strings.TrimSpace(cfg.restURL), "/")

	switch {
	case cfg.carts <= 0:
		return cfg, errors.New("carts must be > 0")
	case cfg.stock < 0:
		return cfg, errors.New("stock must be >= 0")
	case cfg.qty <= 0:
		return cfg, errors.New("qty must be > 0")
	case cfg.priceMinor < 0:
		return cfg, errors.New("price-minor must be >= 0")
	case cfg.concurrency <= 0:
		return cfg, errors.New("concurrency must be > 0")
	case cfg.connections <= 0:
		return cfg, errors.New("connections must be > 0")
	case cfg.timeout <= 0:
		return cfg, errors.New("timeout must be > 0")
	case cfg.restURL == "":
		return cfg, errors.New("rest is required")
	}
	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modePlace:
		return modePlace, nil
	case modePlacePayFinish:
		return modePlacePayFinish, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

// storeAPI — REST-операции, нужные для подготовки и проверки прогона.
type storeAPI interface {
	CreateProduct(ctx context.Context, name string, priceMinor, quantity int64) (string, error)
	CreateCart(ctx context.Context) (string, error)
	AddLine(ctx context.Context, cartID, productID string, quantity int64) error
	ProductQuantity(ctx context.Context, productID string) (int64, error)
}

type restClient struct {
	base string
	http *http.Client
}

func httpClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (c *restClient) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var payload io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *restClient) CreateProduct(ctx context.Context, name string, priceMinor, quantity int64) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/products", map[string]any{
		"name":       name,
		"priceMinor": priceMinor,
		"quantity":   quantity,
		"category":   "OTHER",
	}, http.StatusCreated, &out)
	return out.ID, err
}

func (c *restClient) CreateCart(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/carts", nil, http.StatusCreated, &out)
	return out.ID, err
}

func (c *restClient) AddLine(ctx context.Context, cartID, productID string, quantity int64) error {
	query := url.Values{}
	query.Set("productId", productID)
	query.Set("quantity", strconv.FormatInt(quantity, 10))
	return c.do(ctx, http.MethodPost, "/carts/"+url.PathEscape(cartID)+"/add?"+query.Encode(), nil, http.StatusOK, nil)
}

func (c *restClient) ProductQuantity(ctx context.Context, productID string) (int64, error) {
	var out struct {
		Quantity int64 `json:"quantity"`
	}
	err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), nil, http.StatusOK, &out)
	return out.Quantity, err
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	conns := make([]*grpc.ClientConn, 0, cfg.connections)
	clients := make([]storefrontv1.OrderWorkflowClient, 0, cfg.connections)
	for range cfg.connections {
		conn, dialErr := grpc.NewClient(cfg.grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if dialErr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to create grpc client connection: %v\n", dialErr)
			os.Exit(1)
		}
		conns = append(conns, conn)
		clients = append(clients, storefrontv1.NewOrderWorkflowClient(conn))
	}
	defer func() {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}()

	api := &restClient{base: cfg.restURL, http: httpClient(cfg.timeout)}
	result, err := run(context.Background(), cfg, api, clients)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load test failed: %v\n", err)
		os.Exit(1)
	}

	printReport(os.Stdout, result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 || result.Stock.Oversold || result.Stock.Inconsistency != "" {
		os.Exit(1)
	}
}

// run готовит товар и корзины, параллельно размещает заказы и сверяет остаток.
func run(ctx context.Context, cfg config, api storeAPI, clients []storefrontv1.OrderWorkflowClient) (report, error) {
	if len(clients) == 0 {
		return report{}, errors.New("no grpc clients")
	}
	runID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), os.Getpid())

	productID, err := api.CreateProduct(ctx, "loadtest-"+runID, cfg.priceMinor, cfg.stock)
	if err != nil {
		return report{}, fmt.Errorf("create product: %w", err)
	}
	cartIDs, err := prepareCarts(ctx, cfg, api, productID)
	if err != nil {
		return report{}, err
	}

	col := newCollector()
	jobs := make(chan int, cfg.concurrency*2)
	var wg sync.WaitGroup

	startedAt := time.Now()
	for workerID := range cfg.concurrency {
		wg.Add(1)
		client := clients[workerID%len(clients)]
		go func() {
			defer wg.Done()
			for i := range jobs {
				runScenario(client, cfg, cartIDs[i], fmt.Sprintf("lt-%s-%d", runID, i), col)
			}
		}()
	}
	for i := range cartIDs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := col.buildReport(startedAt, time.Since(startedAt))

	final, err := api.ProductQuantity(ctx, productID)
	if err != nil {
		return result, fmt.Errorf("read final stock: %w", err)
	}
	result.Stock = verifyStock(productID, cfg.stock, final, result.Placed*cfg.qty)
	return result, nil
}

func prepareCarts(ctx context.Context, cfg config, api storeAPI, productID string) ([]string, error) {
	cartIDs := make([]string, cfg.carts)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i := range cartIDs {
		g.Go(func() error {
			cartID, err := api.CreateCart(gctx)
			if err != nil {
				return fmt.Errorf("create cart: %w", err)
			}
			if err := api.AddLine(gctx, cartID, productID, cfg.qty); err != nil {
				return fmt.Errorf("add line to cart %s: %w", cartID, err)
			}
			cartIDs[i] = cartID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cartIDs, nil
}

func verifyStock(productID string, initial, final, unitsPlaced int64) stockReport {
	result := stockReport{
		ProductID:   productID,
		Initial:     initial,
		Final:       final,
		UnitsPlaced: unitsPlaced,
		Oversold:    unitsPlaced > initial || final < 0,
	}
	if initial-unitsPlaced != final {
		result.Inconsistency = fmt.Sprintf("expected final stock %d, got %d", initial-unitsPlaced, final)
	}
	return result
}

func runScenario(client storefrontv1.OrderWorkflowClient, cfg config, cartID, key string, col *collector) {
	scenarioStart := time.Now()
	scenarioCode := codes.OK
	defer func() {
		col.record(scenarioMethod, time.Since(scenarioStart), scenarioCode)
	}()

	order, err := callPlaceOrder(client, cfg.timeout, cartID, key, col)
	if err != nil {
		scenarioCode = grpcCode(err)
		return
	}
	if cfg.mode != modePlacePayFinish {
		return
	}

	if err := callOrderRPC(client.PayOrder, "PayOrder", cfg.timeout, order.GetId(), col); err != nil {
		scenarioCode = grpcCode(err)
		return
	}
	if err := callOrderRPC(client.FinishOrder, "FinishOrder", cfg.timeout, order.GetId(), col); err != nil {
		scenarioCode = grpcCode(err)
	}
}

func callPlaceOrder(client storefrontv1.OrderWorkflowClient, timeout time.Duration, cartID, key string, col *collector) (*storefrontv1.Order, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, idempotencyHeader, key)

	resp, err := client.PlaceOrder(ctx, &storefrontv1.PlaceOrderRequest{CartId: cartID})
	col.record("PlaceOrder", time.Since(start), grpcCode(err))
	if err != nil {
		return nil, err
	}
	return resp.GetOrder(), nil
}

func callOrderRPC[Resp any](
	call func(context.Context, *storefrontv1.OrderRequest, ...grpc.CallOption) (Resp, error),
	method string,
	timeout time.Duration,
	orderID string,
	col *collector,
) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := call(ctx, &storefrontv1.OrderRequest{OrderId: orderID})
	col.record(method, time.Since(start), grpcCode(err))
	return err
}

func grpcCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return status.Code(err)
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(out io.Writer, result report, cfg config) {
	_, _ = fmt.Fprintln(out, "Load test summary")
	_, _ = fmt.Fprintf(out, "mode=%s carts=%d placed=%d insufficient=%d failed=%d error_rate=%.4f\n",
		cfg.mode,
		result.TotalScenarios,
		result.Placed,
		result.Insufficient,
		result.FailedScenarios,
		result.ErrorRate,
	)
	_, _ = fmt.Fprintf(out, "duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	_, _ = fmt.Fprintf(out, "scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	methodNames := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		if name == scenarioMethod {
			continue
		}
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)
	for _, name := range methodNames {
		stats := result.Methods[name]
		_, _ = fmt.Fprintf(out,
			"%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name,
			stats.Calls,
			stats.Success,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P95,
		)
	}

	verdict := "ok"
	switch {
	case result.Stock.Oversold:
		verdict = "OVERSOLD"
	case result.Stock.Inconsistency != "":
		verdict = "INCONSISTENT: " + result.Stock.Inconsistency
	}
	_, _ = fmt.Fprintf(out, "stock: initial=%d placed_units=%d final=%d verdict=%s\n",
		result.Stock.Initial, result.Stock.UnitsPlaced, result.Stock.Final, verdict)
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
