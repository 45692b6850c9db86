// Package heritage embeds the extinction-risk engine in a Go program.
//
// The client talks to Redis or Valkey directly and runs the same scoring
// pipeline as the HTTP service: length, language rarity, digital reference
// and local similarity signals weighted into a single score.
//
//	client, _ := heritage.New(ctx,
//	    heritage.WithRedis("localhost:6379", ""),
//	    heritage.WithEmbedder(myEmbedder),
//	    heritage.WithSearchAPI(apiKey, engineID),
//	)
//	defer client.Close()
//
//	risk, _ := client.Score(ctx, "Kolam masked dance", "sinhala")
//	fmt.Println(risk.Score, risk.Level)
//
//	item, _ := client.Items().Create(ctx, heritage.ItemInput{
//	    Title:       "Kolam",
//	    Description: "Masked dance drama of the southern coast",
//	    Language:    "sinhala",
//	})
package heritage
