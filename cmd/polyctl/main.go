package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
)

const usage = `polyctl - 网关命令行客户端

用法:
  polyctl [-server URL] <command> [args]

命令:
  search <query> [max]          关键词搜索资产
  get_names                     按 id 查名称（id 从 stdin 逐行读取）
  get_id <name>                 按名称反查资产 id
  get_books [depth]             查订单簿（id 从 stdin 逐行读取）
  place_order <id> <size> <price>  下单（size 为正买入、为负卖出）
  get_orders [fields...]        列出开放订单（可选字段投影）
  groups                        列出所有分组
  group <name>                  查看一个分组
`

var (
	bidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // 绿色买单
	askStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // 红色卖单
)

func main() {
	_ = godotenv.Load()

	defaultServer := os.Getenv("POLYSERVE_URL")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:8080"
	}
	server := flag.String("server", defaultServer, "网关地址")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(*server, "/")).
		SetTimeout(30 * time.Second)

	var err error
	switch args[0] {
	case "search":
		err = cmdSearch(rc, args[1:])
	case "get_names":
		err = cmdGetNames(rc)
	case "get_id":
		err = cmdGetID(rc, args[1:])
	case "get_books":
		err = cmdGetBooks(rc, args[1:])
	case "place_order":
		err = cmdPlaceOrder(rc, args[1:])
	case "get_orders":
		err = cmdGetOrders(rc, args[1:])
	case "groups":
		err = cmdGroups(rc)
	case "group":
		err = cmdGroup(rc, args[1:])
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// getJSON 执行 GET 并解析响应，非 2xx 返回响应体作为错误
func getJSON(rc *resty.Client, path string, params map[string]string, out any) error {
	resp, err := rc.R().SetQueryParams(params).Get(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%s: %s", resp.Status(), strings.TrimSpace(string(resp.Body())))
	}
	return json.Unmarshal(resp.Body(), out)
}

func cmdSearch(rc *resty.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("用法: search <query> [max]")
	}
	params := map[string]string{"query": args[0]}
	if len(args) > 1 {
		params["max_num_results"] = args[1]
	}

	var ids []string
	if err := getJSON(rc, "/search", params, &ids); err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func cmdGetNames(rc *resty.Client) error {
	ids, err := readLines(os.Stdin)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("stdin 没有资产 id")
	}

	var names []*string
	if err := getJSON(rc, "/get_names", map[string]string{"asset_ids": strings.Join(ids, ",")}, &names); err != nil {
		return err
	}
	for i, name := range names {
		if name == nil {
			fmt.Printf("%s\t<未注册>\n", ids[i])
			continue
		}
		fmt.Printf("%s\t%s\n", ids[i], *name)
	}
	return nil
}

func cmdGetID(rc *resty.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("用法: get_id <name>")
	}
	var id string
	if err := getJSON(rc, "/get_id", map[string]string{"name": args[0]}, &id); err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func cmdGetBooks(rc *resty.Client, args []string) error {
	depth := "0"
	if len(args) > 0 {
		if _, err := strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("无效的 depth: %q", args[0])
		}
		depth = args[0]
	}

	ids, err := readLines(os.Stdin)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("stdin 没有资产 id")
	}

	var out []map[string]float64
	params := map[string]string{"asset_ids": strings.Join(ids, ","), "depth": depth}
	if err := getJSON(rc, "/get_books", params, &out); err != nil {
		return err
	}

	for i, levels := range out {
		fmt.Printf("== %s ==\n", ids[i])
		if levels == nil {
			fmt.Println("  <拉取失败>")
			continue
		}
		renderBook(levels)
	}
	return nil
}

// renderBook 按价格降序打印档位，买单绿色、卖单红色，带单位条
func renderBook(levels map[string]float64) {
	type row struct {
		price float64
		size  float64
	}
	rows := make([]row, 0, len(levels))
	maxAbs := 0.0
	for priceStr, size := range levels {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			continue
		}
		rows = append(rows, row{price: price, size: size})
		abs := size
		if abs < 0 {
			abs = -abs
		}
		if abs > maxAbs {
			maxAbs = abs
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].price > rows[j].price })

	for _, r := range rows {
		abs := r.size
		style := bidStyle
		if r.size < 0 {
			abs = -r.size
			style = askStyle
		}
		bar := ""
		if maxAbs > 0 {
			bar = strings.Repeat("█", int(abs/maxAbs*30))
		}
		fmt.Printf("  %s\n", style.Render(fmt.Sprintf("%8.4f %12.2f %s", r.price, r.size, bar)))
	}
}

func cmdPlaceOrder(rc *resty.Client, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("用法: place_order <asset_id> <size> <price>")
	}
	if _, err := strconv.ParseFloat(args[1], 64); err != nil {
		return fmt.Errorf("无效的 size: %q", args[1])
	}
	if _, err := strconv.ParseFloat(args[2], 64); err != nil {
		return fmt.Errorf("无效的 price: %q", args[2])
	}

	resp, err := rc.R().
		SetQueryParams(map[string]string{
			"asset_id": args[0],
			"size":     args[1],
			"price":    args[2],
		}).
		Post("/place_order")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%s: %s", resp.Status(), strings.TrimSpace(string(resp.Body())))
	}
	fmt.Println(strings.TrimSpace(string(resp.Body())))
	return nil
}

func cmdGetOrders(rc *resty.Client, fields []string) error {
	var orders []map[string]any
	if err := getJSON(rc, "/get_orders", nil, &orders); err != nil {
		return err
	}

	if len(fields) == 0 {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(orders)
	}

	// 字段投影：每行一个订单，按给定字段输出
	for _, order := range orders {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = fmt.Sprintf("%v", order[f])
		}
		fmt.Println(strings.Join(parts, "\t"))
	}
	return nil
}

func cmdGroups(rc *resty.Client) error {
	var names []string
	if err := getJSON(rc, "/get_groups", nil, &names); err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func cmdGroup(rc *resty.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("用法: group <name>")
	}
	var g struct {
		Name     string   `json:"name"`
		Assets   []string `json:"assets"`
		Selected string   `json:"selected"`
	}
	if err := getJSON(rc, "/get_group", map[string]string{"name": args[0]}, &g); err != nil {
		return err
	}
	fmt.Printf("分组: %s\n选中: %s\n", g.Name, g.Selected)
	for _, id := range g.Assets {
		fmt.Println("  " + id)
	}
	return nil
}

func readLines(f *os.File) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
