package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// UID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type string `json:"type"` // subscribe | unsubscribe | ping
	UID  string `json:"uid"`  // requerido em subscribe/unsubscribe
}

// WalletUpdate representa um aviso de mudança de saldo enviado aos clientes
// O payload não carrega o novo saldo; o cliente deve refazer a leitura
type WalletUpdate struct {
	UID     string      `json:"uid"`
	Payload interface{} `json:"payload"`
}
