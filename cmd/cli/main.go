package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "store":
		handleStore(args)
	case "product":
		handleProduct(args)
	case "order":
		handleOrder(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: swiftstore auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleStore(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: swiftstore store <create|show>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "create":
		createStore(args[1:])
	case "show":
		showStore(args[1:])
	default:
		fmt.Printf("unknown store command: %s\n", subCmd)
	}
}

func handleProduct(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: swiftstore product <list|create|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listProducts(args[1:])
	case "create":
		createProduct(args[1:])
	case "delete":
		deleteProduct(args[1:])
	default:
		fmt.Printf("unknown product command: %s\n", subCmd)
	}
}

func handleOrder(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: swiftstore order <list|show>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listOrders(args[1:])
	case "show":
		showOrder(args[1:])
	default:
		fmt.Printf("unknown order command: %s\n", subCmd)
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *username == "" || *password == "" {
		fmt.Println("Error: email, username, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":    *email,
		"username": *username,
		"password": *password,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ User registered: %s\n", *email)
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

// Store commands
func createStore(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "store display name")
	subdomain := fs.String("subdomain", "", "store subdomain label")
	description := fs.String("description", "", "store description")

	fs.Parse(args)

	if *name == "" || *subdomain == "" {
		fmt.Println("Error: name and subdomain are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"name":        *name,
		"subdomain":   *subdomain,
		"description": *description,
	}
	data, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", getAPIURL()+"/stores", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Store created: %v (%v)\n", result["name"], result["subdomain"])
	} else {
		fmt.Printf("✗ Store creation failed: %v\n", result)
	}
}

func showStore(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	storeID := fs.String("store", "", "store ID")
	fs.Parse(args)

	if *storeID == "" {
		fmt.Println("Error: store is required")
		fs.PrintDefaults()
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/stores/"+*storeID, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ %v\n", result)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tVALUE")
	for _, k := range []string{"id", "name", "subdomain", "description", "createdAt"} {
		fmt.Fprintf(w, "%s\t%v\n", k, result[k])
	}
	w.Flush()
}

// Product commands
func listProducts(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	storeID := fs.String("store", "", "store ID")
	fs.Parse(args)

	if *storeID == "" {
		fmt.Println("Error: store is required")
		fs.PrintDefaults()
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/stores/"+*storeID+"/products", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var products []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&products)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPUBLISHED")
	for _, p := range products {
		fmt.Fprintf(w, "%v\t%v\t%v\n", p["id"], p["name"], p["published"])
	}
	w.Flush()
}

func createProduct(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	storeID := fs.String("store", "", "store ID")
	name := fs.String("name", "", "product name")
	description := fs.String("description", "", "product description")
	published := fs.Bool("published", false, "publish to the storefront immediately")
	fs.Parse(args)

	if *storeID == "" || *name == "" {
		fmt.Println("Error: store and name are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{
		"name":        *name,
		"description": *description,
		"published":   *published,
	}
	data, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", getAPIURL()+"/stores/"+*storeID+"/products", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Product created: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Product creation failed: %v\n", result)
	}
}

func deleteProduct(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	storeID := fs.String("store", "", "store ID")
	productID := fs.String("product", "", "product ID")
	fs.Parse(args)

	if *storeID == "" || *productID == "" {
		fmt.Println("Error: store and product are required")
		fs.PrintDefaults()
		return
	}

	req, _ := http.NewRequest("DELETE", getAPIURL()+"/stores/"+*storeID+"/products/"+*productID, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 204 || resp.StatusCode == 200 {
		fmt.Println("✓ Product deleted")
	} else {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Delete failed: %v\n", result)
	}
}

// Order commands
func listOrders(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	storeID := fs.String("store", "", "store ID")
	fs.Parse(args)

	if *storeID == "" {
		fmt.Println("Error: store is required")
		fs.PrintDefaults()
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/stores/"+*storeID+"/orders", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var orders []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&orders)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTOTAL\tCREATED")
	for _, o := range orders {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", o["id"], o["status"], o["totalAmount"], o["createdAt"])
	}
	w.Flush()
}

func showOrder(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	storeID := fs.String("store", "", "store ID")
	orderID := fs.String("order", "", "order ID")
	fs.Parse(args)

	if *storeID == "" || *orderID == "" {
		fmt.Println("Error: store and order are required")
		fs.PrintDefaults()
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/stores/"+*storeID+"/orders/"+*orderID, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ %v\n", result)
		return
	}

	pretty, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(pretty))
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("SWIFTSTORE_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.swiftstore/token"
}

func saveToken(token string) error {
	os.MkdirAll(os.Getenv("HOME")+"/.swiftstore", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`SwiftStore CLI

Usage:
  swiftstore <command> [options]

Commands:
  auth     User authentication (register, login, logout, who)
  store    Store operations (create, show)
  product  Product operations (list, create, delete)
  order    Order operations (list, show)
  help     Show this help message

Environment Variables:
  SWIFTSTORE_API    API endpoint (default: http://localhost:8080/api)

Examples:
  swiftstore auth register -email owner@example.com -username owner -password pass
  swiftstore auth login -email owner@example.com -password pass
  swiftstore store create -name "Acme Goods" -subdomain acme
  swiftstore product list -store <store-id>
  swiftstore order list -store <store-id>
`)
}
