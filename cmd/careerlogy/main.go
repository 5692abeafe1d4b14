// careerlogy - сервис карьерных рекомендаций: HTTP API, воркер очереди и телеграм-бот.
package main

func main() {
	Execute()
}
