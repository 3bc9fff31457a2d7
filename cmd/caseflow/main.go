package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caseflow-io/caseflow/pkg/sdk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	client := sdk.New()
	if token := os.Getenv("CASEFLOW_TOKEN"); token != "" {
		client.SetToken(token)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	command := strings.ToUpper(os.Args[1])
	args := os.Args[2:]

	switch command {
	case "REGISTER":
		if len(args) < 2 {
			log.Fatal("Usage: caseflow REGISTER <email> <password> [fullName]")
		}
		fullName := ""
		if len(args) > 2 {
			fullName = args[2]
		}
		user, err := client.Register(ctx, args[0], args[1], fullName)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(user)

	case "LOGIN":
		if len(args) < 2 {
			log.Fatal("Usage: caseflow LOGIN <email> <password>")
		}
		user, err := client.Login(ctx, args[0], args[1])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(user)

	case "PERSON_GET":
		if len(args) < 1 {
			log.Fatal("Usage: caseflow PERSON_GET <id>")
		}
		person, err := client.GetPerson(ctx, parseID(args[0]))
		if err != nil {
			log.Fatal(err)
		}
		printJSON(person)

	case "PERSON_CREATE":
		if len(args) < 1 {
			log.Fatal(`Usage: caseflow PERSON_CREATE '{"first_name":"...","last_name":"..."}'`)
		}
		person, err := client.CreatePerson(ctx, parseFields(args[0]))
		if err != nil {
			log.Fatal(err)
		}
		printJSON(person)

	case "PERSON_UPDATE":
		if len(args) < 2 {
			log.Fatal(`Usage: caseflow PERSON_UPDATE <id> '{"phone":"..."}'`)
		}
		person, err := client.UpdatePerson(ctx, parseID(args[0]), parseFields(args[1]))
		if err != nil {
			log.Fatal(err)
		}
		printJSON(person)

	case "PERSON_DEL":
		if len(args) < 1 {
			log.Fatal("Usage: caseflow PERSON_DEL <id>")
		}
		if err := client.DeletePerson(ctx, parseID(args[0])); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "PERSON_LIST":
		page, limit := 1, 10
		if len(args) > 0 {
			page = int(parseID(args[0]))
		}
		if len(args) > 1 {
			limit = int(parseID(args[1]))
		}
		result, err := client.ListPeople(ctx, page, limit)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(result)

	case "CASE_CREATE":
		if len(args) < 1 {
			log.Fatal(`Usage: caseflow CASE_CREATE '{"title":"..."}'`)
		}
		record, err := client.CreateCase(ctx, parseFields(args[0]))
		if err != nil {
			log.Fatal(err)
		}
		printJSON(record)

	case "CASE_GET":
		if len(args) < 1 {
			log.Fatal("Usage: caseflow CASE_GET <id>")
		}
		record, err := client.GetCase(ctx, parseID(args[0]))
		if err != nil {
			log.Fatal(err)
		}
		printJSON(record)

	case "CASE_UPDATE":
		if len(args) < 2 {
			log.Fatal(`Usage: caseflow CASE_UPDATE <id> '{"status":"closed"}'`)
		}
		record, err := client.UpdateCase(ctx, parseID(args[0]), parseFields(args[1]))
		if err != nil {
			log.Fatal(err)
		}
		printJSON(record)

	case "CASE_DEL":
		if len(args) < 1 {
			log.Fatal("Usage: caseflow CASE_DEL <id>")
		}
		if err := client.DeleteCase(ctx, parseID(args[0])); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "CASE_LIST":
		page, limit := 1, 10
		if len(args) > 0 {
			page = int(parseID(args[0]))
		}
		if len(args) > 1 {
			limit = int(parseID(args[1]))
		}
		result, err := client.ListCases(ctx, page, limit)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(result)

	case "CASE_SEARCH":
		query, status, priority := "", "", ""
		if len(args) > 0 {
			query = args[0]
		}
		if len(args) > 1 {
			status = args[1]
		}
		if len(args) > 2 {
			priority = args[2]
		}
		results, err := client.SearchCases(ctx, query, status, priority)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(results)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Fatalf("invalid id %q", s)
	}
	return id
}

func parseFields(s string) map[string]any {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		log.Fatalf("invalid JSON object: %v", err)
	}
	return fields
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}

func printUsage() {
	fmt.Println("Caseflow CLI - Interface for the caseflow services")
	fmt.Println("\nUsage:")
	fmt.Println("  caseflow REGISTER <email> <password> [fullName]")
	fmt.Println("  caseflow LOGIN <email> <password>")
	fmt.Println("  caseflow PERSON_CREATE '<json>'")
	fmt.Println("  caseflow PERSON_GET <id>")
	fmt.Println("  caseflow PERSON_UPDATE <id> '<json>'")
	fmt.Println("  caseflow PERSON_DEL <id>")
	fmt.Println("  caseflow PERSON_LIST [page] [limit]")
	fmt.Println("  caseflow CASE_CREATE '<json>'")
	fmt.Println("  caseflow CASE_GET <id>")
	fmt.Println("  caseflow CASE_UPDATE <id> '<json>'")
	fmt.Println("  caseflow CASE_DEL <id>")
	fmt.Println("  caseflow CASE_LIST [page] [limit]")
	fmt.Println("  caseflow CASE_SEARCH [query] [status] [priority]")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  CASEFLOW_AUTH_URL       Auth service (default: http://localhost:3001)")
	fmt.Println("  CASEFLOW_PEOPLE_URL     People service (default: http://localhost:3002)")
	fmt.Println("  CASEFLOW_CASE_URL       Case service (default: http://localhost:3003)")
	fmt.Println("  CASEFLOW_TOKEN          Bearer token from a previous LOGIN")
	fmt.Println("  CASEFLOW_TLS_INSECURE   Set to true to accept self-signed certificates")
}
