// Package searchdialog provides an embedded Go client for the dialogue
// decision engine backed by Redis.
//
// The client wires the full turn pipeline in-process: entity
// normalization, comparison and modification detection, suggestion
// handling and conversation state persistence.
//
//	client, _ := searchdialog.New(ctx,
//	    searchdialog.WithRedis("localhost:6379", ""),
//	    searchdialog.WithVocabularyFile("config/vocabulary.yaml"),
//	)
//	defer client.Close()
//
//	out, _ := client.ProcessTurn(ctx, searchdialog.TurnInput{
//	    ConversationID: "c1",
//	    Intent:         "buscar_producto",
//	    Text:           "busco amoxicilina",
//	    Entities:       []searchdialog.Entity{{Type: "producto", Value: "amoxicilina"}},
//	})
package searchdialog
